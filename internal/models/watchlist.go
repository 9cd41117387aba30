package models

import (
	"fmt"
	"strings"
	"time"
)

// WatchlistEntry pairs a watched symbol with its most recent quote.
// Quote is nil until the first successful refresh.
type WatchlistEntry struct {
	Symbol string `json:"symbol"`
	Quote  *Quote `json:"quote,omitempty"`
}

// WatchlistSummary is a point-in-time view of the watchlist with quotes,
// rendered for the daily closing digest.
type WatchlistSummary struct {
	Entries   []WatchlistEntry `json:"entries"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// FindBySymbol returns the entry and index for a symbol, or -1 if not found.
func (w *WatchlistSummary) FindBySymbol(symbol string) (*WatchlistEntry, int) {
	for i, e := range w.Entries {
		if strings.EqualFold(e.Symbol, symbol) {
			return &w.Entries[i], i
		}
	}
	return nil, -1
}

// ToMarkdown renders the watchlist as a readable markdown document, gainers
// first. Entries without a quote yet are listed last as pending.
func (w *WatchlistSummary) ToMarkdown() string {
	var b strings.Builder

	b.WriteString("# Watchlist\n\n")

	if len(w.Entries) == 0 {
		b.WriteString("No watchlist items.\n")
		return b.String()
	}

	gainers := make([]WatchlistEntry, 0)
	losers := make([]WatchlistEntry, 0)
	pending := make([]WatchlistEntry, 0)

	for _, e := range w.Entries {
		switch {
		case e.Quote == nil:
			pending = append(pending, e)
		case strings.HasPrefix(e.Quote.Change, "-"):
			losers = append(losers, e)
		default:
			gainers = append(gainers, e)
		}
	}

	if len(gainers) > 0 {
		b.WriteString("## Up\n\n")
		for _, e := range gainers {
			writeWatchlistEntry(&b, e)
		}
		b.WriteString("\n")
	}

	if len(losers) > 0 {
		b.WriteString("## Down\n\n")
		for _, e := range losers {
			writeWatchlistEntry(&b, e)
		}
		b.WriteString("\n")
	}

	if len(pending) > 0 {
		b.WriteString("## Pending\n\n")
		for _, e := range pending {
			b.WriteString(fmt.Sprintf("- **%s** — no quote yet\n", e.Symbol))
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n\n")
	b.WriteString(fmt.Sprintf("%d items", len(w.Entries)))
	if !w.UpdatedAt.IsZero() {
		b.WriteString(fmt.Sprintf(" | Updated %s", w.UpdatedAt.Format("2006-01-02 15:04")))
	}
	b.WriteString("\n")

	return b.String()
}

func writeWatchlistEntry(b *strings.Builder, e WatchlistEntry) {
	b.WriteString(fmt.Sprintf("- **%s**", e.Symbol))
	if e.Quote != nil {
		if e.Quote.Name != "" && !strings.EqualFold(e.Quote.Name, e.Symbol) {
			b.WriteString(fmt.Sprintf(" (%s)", e.Quote.Name))
		}
		b.WriteString(fmt.Sprintf(" %s %s", e.Quote.Price, e.Quote.Change))
	}
	b.WriteString("\n")
}
