package common

import "time"

// Freshness TTLs for portal-cached data, organized in two tiers:
//
// Tier 1 — Live: quotes, rankings, asset tickers. Short TTL, re-fetched on a
// fast polling cadence. Never cached beyond a few seconds.
//
// Tier 2 — Session data: stock snapshots with AI analysis, calendars,
// watchlist membership. Time-based TTL sized to the cost of the upstream
// call; a snapshot carries an expensive backend analysis, so a short memo
// window is enough to make fast re-navigation free without serving stale
// scores.
const (
	FreshnessQuote     = 5 * time.Second
	FreshnessTopMovers = 10 * time.Second
	FreshnessSnapshot  = 60 * time.Second
	FreshnessWatchlist = 10 * time.Second
	FreshnessCalendar  = 60 * time.Second
)

// IsFresh returns true if the given timestamp is within the TTL.
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
