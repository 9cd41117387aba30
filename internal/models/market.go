package models

// AssetQuote is one row of the cross-asset ticker tape (indices, FX, crypto).
type AssetQuote struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Price  string `json:"price"`
	Change string `json:"change"`
	Kind   string `json:"kind,omitempty"` // "index", "fx", "crypto", "stock"
}

// TopMover is one entry of the realtime top-10 ranking for a market.
type TopMover struct {
	Rank   int    `json:"rank"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Price  string `json:"price"`
	Change string `json:"change"`
}

// MarketStatus is the market "traffic light": an overall signal plus the
// details the dashboard surfaces (USD rate, VIX, and similar).
type MarketStatus struct {
	Signal  string            `json:"signal"` // "green", "yellow", "red"
	Comment string            `json:"comment,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// CalendarEvent is one macro-calendar entry (CPI print, FOMC, earnings).
type CalendarEvent struct {
	Date   string `json:"date"`
	Time   string `json:"time,omitempty"`
	Event  string `json:"event"`
	Impact string `json:"impact,omitempty"` // "high", "medium", "low"
}
