package mcp

import (
	"fmt"
	"strings"

	"github.com/finsight/finsight-portal/internal/common"
)

// allowedMethods is the whitelist of HTTP methods for catalog tools.
var allowedMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true, "DELETE": true,
}

// CatalogTool describes one portal tool: its MCP registration schema and
// the REST endpoint it mirrors (used for dashboard display).
type CatalogTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Method      string         `json:"method"`
	Path        string         `json:"path"`
	Premium     bool           `json:"premium"`
	Params      []CatalogParam `json:"params"`
}

// CatalogParam describes one parameter for a catalog tool.
type CatalogParam struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // string, number, boolean, array
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// PortalCatalog returns the portal's tool catalog. Premium tools require
// an active entitlement at call time.
func PortalCatalog() []CatalogTool {
	return []CatalogTool{
		{
			Name:        "analyze_stock",
			Description: "Fetch the full analysis snapshot for a ticker: price, score, metrics, strategy and related stocks.",
			Method:      "GET",
			Path:        "/api/stock/{ticker}",
			Params: []CatalogParam{
				{Name: "ticker", Type: "string", Description: "Ticker symbol, e.g. AAPL or 005930", Required: true},
			},
		},
		{
			Name:        "get_quote",
			Description: "Fetch a live quote for a symbol without triggering analysis.",
			Method:      "GET",
			Path:        "/api/quote/{symbol}",
			Params: []CatalogParam{
				{Name: "symbol", Type: "string", Description: "Ticker symbol", Required: true},
			},
		},
		{
			Name:        "list_alerts",
			Description: "List all stored price and signal alerts.",
			Method:      "GET",
			Path:        "/api/alerts",
		},
		{
			Name:        "create_alert",
			Description: "Create a price alert. Technical-signal types (RSI_OVERSOLD, GOLDEN_CROSS, PRICE_DROP) require an active entitlement.",
			Method:      "POST",
			Path:        "/api/alerts",
			Params: []CatalogParam{
				{Name: "symbol", Type: "string", Description: "Ticker symbol", Required: true},
				{Name: "type", Type: "string", Description: "Alert type: PRICE, RSI_OVERSOLD, GOLDEN_CROSS or PRICE_DROP", Required: true},
				{Name: "target_price", Type: "number", Description: "Trigger price (PRICE alerts)"},
				{Name: "condition", Type: "string", Description: "above or below"},
			},
		},
		{
			Name:        "delete_alert",
			Description: "Delete an alert by ID.",
			Method:      "DELETE",
			Path:        "/api/alerts/{id}",
			Params: []CatalogParam{
				{Name: "id", Type: "number", Description: "Alert ID", Required: true},
			},
		},
		{
			Name:        "optimize_portfolio",
			Description: "Run the mean-variance optimizer over a set of symbols. Premium feature.",
			Method:      "POST",
			Path:        "/api/portfolio/optimize",
			Premium:     true,
			Params: []CatalogParam{
				{Name: "symbols", Type: "array", Description: "Two or more ticker symbols", Required: true},
			},
		},
		{
			Name:        "get_watchlist",
			Description: "Fetch the watchlist with a current quote per symbol, rendered as markdown.",
			Method:      "GET",
			Path:        "/api/watchlist",
		},
		{
			Name:        "add_to_watchlist",
			Description: "Add a symbol to the watchlist.",
			Method:      "POST",
			Path:        "/api/watchlist",
			Params: []CatalogParam{
				{Name: "symbol", Type: "string", Description: "Ticker symbol", Required: true},
			},
		},
		{
			Name:        "remove_from_watchlist",
			Description: "Remove a symbol from the watchlist.",
			Method:      "DELETE",
			Path:        "/api/watchlist/{symbol}",
			Params: []CatalogParam{
				{Name: "symbol", Type: "string", Description: "Ticker symbol", Required: true},
			},
		},
		{
			Name:        "get_top_movers",
			Description: "Fetch today's top gaining and losing stocks for a market.",
			Method:      "GET",
			Path:        "/api/market/movers",
			Params: []CatalogParam{
				{Name: "market", Type: "string", Description: "Market code, e.g. KR or US"},
			},
		},
	}
}

// ValidateCatalogTool validates a single catalog tool entry.
func ValidateCatalogTool(ct CatalogTool) error {
	if ct.Name == "" {
		return fmt.Errorf("tool has empty name")
	}
	if ct.Method == "" {
		return fmt.Errorf("tool %q has empty method", ct.Name)
	}
	if !allowedMethods[strings.ToUpper(ct.Method)] {
		return fmt.Errorf("tool %q has unsupported method %q", ct.Name, ct.Method)
	}
	if ct.Path == "" {
		return fmt.Errorf("tool %q has empty path", ct.Name)
	}
	if !strings.HasPrefix(ct.Path, "/api/") {
		return fmt.Errorf("tool %q has invalid path %q (must start with /api/)", ct.Name, ct.Path)
	}
	if strings.Contains(ct.Path, "..") {
		return fmt.Errorf("tool %q has invalid path %q (contains ..)", ct.Name, ct.Path)
	}
	return nil
}

// ValidateCatalog filters and validates catalog entries, logging warnings
// for invalid or duplicate tools.
func ValidateCatalog(catalog []CatalogTool, logger *common.Logger) []CatalogTool {
	seen := make(map[string]bool, len(catalog))
	valid := make([]CatalogTool, 0, len(catalog))
	for _, ct := range catalog {
		if err := ValidateCatalogTool(ct); err != nil {
			logger.Warn().Str("error", err.Error()).Msg("skipping invalid catalog tool")
			continue
		}
		if seen[ct.Name] {
			logger.Warn().Str("name", ct.Name).Msg("skipping duplicate catalog tool")
			continue
		}
		seen[ct.Name] = true
		valid = append(valid, ct)
	}
	return valid
}
