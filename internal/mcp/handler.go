// Package mcp exposes the portal's operations as MCP tools over a
// streamable HTTP endpoint.
package mcp

import (
	"context"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/finsight/finsight-portal/internal/client"
	"github.com/finsight/finsight-portal/internal/common"
	"github.com/finsight/finsight-portal/internal/config"
)

// Entitlements is the slice of the entitlement store the MCP surface
// needs to gate premium tools.
type Entitlements interface {
	IsEntitled(ctx context.Context) bool
}

// Handler is the HTTP handler for the MCP endpoint.
// It wraps mcp-go's StreamableHTTPServer and delegates to it.
type Handler struct {
	streamable *mcpserver.StreamableHTTPServer
	logger     *common.Logger
	catalog    []CatalogTool
}

// NewHandler creates the MCP handler. The tool catalog is static; premium
// tools re-check the entitlement on every call.
func NewHandler(cfg *config.Config, logger *common.Logger, c *client.FinsightClient, ent Entitlements) *Handler {
	mcpSrv := mcpserver.NewMCPServer(
		"finsight-portal",
		config.GetVersion(),
		mcpserver.WithToolCapabilities(true),
	)

	validated := ValidateCatalog(PortalCatalog(), logger)
	toolCount := registerTools(mcpSrv, c, ent, validated)

	mcpSrv.AddTool(VersionTool(), VersionToolHandler(cfg.API.URL))

	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithStateLess(true),
	)

	logger.Info().
		Int("tools", toolCount).
		Str("api_url", cfg.API.URL).
		Msg("MCP handler initialized")

	return &Handler{
		streamable: streamable,
		logger:     logger,
		catalog:    validated,
	}
}

// Catalog returns a copy of the validated tool catalog.
func (h *Handler) Catalog() []CatalogTool {
	result := make([]CatalogTool, len(h.catalog))
	copy(result, h.catalog)
	return result
}

// ServeHTTP delegates to the mcp-go StreamableHTTPServer.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.streamable.ServeHTTP(w, r)
}

// registerTools wires each catalog tool to its handler. Premium tools are
// wrapped with the entitlement gate.
func registerTools(s *mcpserver.MCPServer, c *client.FinsightClient, ent Entitlements, catalog []CatalogTool) int {
	count := 0
	for _, ct := range catalog {
		handler := toolHandler(c, ent, ct.Name)
		if handler == nil {
			continue
		}
		if ct.Premium {
			handler = requireEntitlement(ent, handler)
		}
		s.AddTool(BuildMCPTool(ct), handler)
		count++
	}
	return count
}

// toolHandler maps a catalog tool name to its implementation.
func toolHandler(c *client.FinsightClient, ent Entitlements, name string) mcpserver.ToolHandlerFunc {
	switch name {
	case "analyze_stock":
		return analyzeStockHandler(c)
	case "get_quote":
		return getQuoteHandler(c)
	case "list_alerts":
		return listAlertsHandler(c)
	case "create_alert":
		return createAlertHandler(c, ent)
	case "delete_alert":
		return deleteAlertHandler(c)
	case "optimize_portfolio":
		return optimizePortfolioHandler(c)
	case "get_watchlist":
		return getWatchlistHandler(c)
	case "add_to_watchlist":
		return addToWatchlistHandler(c)
	case "remove_from_watchlist":
		return removeFromWatchlistHandler(c)
	case "get_top_movers":
		return getTopMoversHandler(c)
	}
	return nil
}
