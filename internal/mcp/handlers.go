package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/finsight/finsight-portal/internal/client"
	"github.com/finsight/finsight-portal/internal/models"
)

// jsonResult marshals v and wraps it as a text result.
func jsonResult(v interface{}) *mcp.CallToolResult {
	out, err := json.Marshal(v)
	if err != nil {
		return errorResult(fmt.Sprintf("Error: failed to encode result: %v", err))
	}
	return textResult(string(out))
}

func analyzeStockHandler(c *client.FinsightClient) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker := r.GetString("ticker", "")
		if ticker == "" {
			return errorResult("Error: ticker parameter is required"), nil
		}
		snap, err := c.GetStock(ctx, ticker)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(snap), nil
	}
}

func getQuoteHandler(c *client.FinsightClient) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol := r.GetString("symbol", "")
		if symbol == "" {
			return errorResult("Error: symbol parameter is required"), nil
		}
		quote, err := c.GetQuote(ctx, symbol)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(quote), nil
	}
}

func listAlertsHandler(c *client.FinsightClient) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		alerts, err := c.ListAlerts(ctx)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(alerts), nil
	}
}

func createAlertHandler(c *client.FinsightClient, ent Entitlements) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req := models.CreateAlertRequest{
			Symbol:    r.GetString("symbol", ""),
			AlertType: models.AlertType(r.GetString("type", "")),
			Condition: r.GetString("condition", ""),
		}
		if args := r.GetArguments(); args != nil {
			if v, ok := args["target_price"].(float64); ok {
				req.TargetPrice = v
			}
		}
		if err := req.Validate(); err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		if req.AlertType.IsSniper() && !ent.IsEntitled(ctx) {
			return errorResult("Error: sniper alerts require an active entitlement"), nil
		}

		alert, err := c.CreateAlert(ctx, &req)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(alert), nil
	}
}

func deleteAlertHandler(c *client.FinsightClient) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := r.GetArguments()
		id, ok := args["id"].(float64)
		if !ok {
			return errorResult("Error: id parameter is required"), nil
		}
		if err := c.DeleteAlert(ctx, int64(id)); err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult(fmt.Sprintf("Alert %d deleted", int64(id))), nil
	}
}

func optimizePortfolioHandler(c *client.FinsightClient) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := r.GetArguments()
		raw, ok := args["symbols"].([]interface{})
		if !ok {
			return errorResult("Error: symbols parameter is required"), nil
		}
		symbols := make([]string, 0, len(raw))
		for _, v := range raw {
			if s, ok := v.(string); ok && s != "" {
				symbols = append(symbols, s)
			}
		}
		req := models.OptimizeRequest{Symbols: symbols}
		if err := req.Validate(); err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		result, err := c.OptimizePortfolio(ctx, symbols)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult(result.ToMarkdown()), nil
	}
}

func getWatchlistHandler(c *client.FinsightClient) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbols, err := c.GetWatchlist(ctx)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		summary := models.WatchlistSummary{UpdatedAt: time.Now()}
		for _, s := range symbols {
			entry := models.WatchlistEntry{Symbol: s}
			if quote, qerr := c.GetQuote(ctx, s); qerr == nil {
				entry.Quote = quote
			}
			summary.Entries = append(summary.Entries, entry)
		}
		return textResult(summary.ToMarkdown()), nil
	}
}

func addToWatchlistHandler(c *client.FinsightClient) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol := r.GetString("symbol", "")
		if symbol == "" {
			return errorResult("Error: symbol parameter is required"), nil
		}
		if err := c.AddWatchlist(ctx, symbol); err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult(fmt.Sprintf("%s added to watchlist", symbol)), nil
	}
}

func removeFromWatchlistHandler(c *client.FinsightClient) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol := r.GetString("symbol", "")
		if symbol == "" {
			return errorResult("Error: symbol parameter is required"), nil
		}
		if err := c.RemoveWatchlist(ctx, symbol); err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult(fmt.Sprintf("%s removed from watchlist", symbol)), nil
	}
}

func getTopMoversHandler(c *client.FinsightClient) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		market := r.GetString("market", "KR")
		movers, err := c.GetTopMovers(ctx, market)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(movers), nil
	}
}
