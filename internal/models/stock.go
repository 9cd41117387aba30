// Package models defines data structures exchanged with finsight-server
// and consumed by the dashboard.
package models

// Quote holds a minimal live quote for watchlist and ticker displays.
// Price and change arrive pre-formatted from finsight-server (locale-aware
// for KRW tickers) and are passed through untouched.
type Quote struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Price  string `json:"price"`
	Change string `json:"change"`
}

// StockMetrics holds the three AI scoring components for a stock.
type StockMetrics struct {
	SupplyDemand int `json:"supplyDemand"`
	Financials   int `json:"financials"`
	News         int `json:"news"`
}

// DailyPrice represents one day's OHLCV bar with day-over-day change.
type DailyPrice struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
	Change float64 `json:"change"`
}

// RelatedStock is one entry of the AI's related-tickers list.
type RelatedStock struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Reason string `json:"reason,omitempty"`
}

// StockSnapshot is the full analysis payload for one ticker:
// quote data plus the backend's AI scoring, summary, and trade levels.
type StockSnapshot struct {
	Symbol        string            `json:"symbol"`
	Name          string            `json:"name"`
	Price         string            `json:"price"`
	Change        string            `json:"change"`
	Currency      string            `json:"currency"`
	Sector        string            `json:"sector,omitempty"`
	Score         int               `json:"score"`
	Metrics       StockMetrics      `json:"metrics"`
	Summary       string            `json:"summary"`
	Details       map[string]string `json:"details,omitempty"`
	DailyPrices   []DailyPrice      `json:"daily_prices,omitempty"`
	Strategy      map[string]string `json:"strategy,omitempty"`
	Rationale     map[string]string `json:"rationale,omitempty"`
	RelatedStocks []RelatedStock    `json:"related_stocks,omitempty"`
}
