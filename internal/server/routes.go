package server

import "net/http"

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleRoot)

	// MCP endpoint (JSON-RPC over HTTP)
	if s.app.MCPHandler != nil {
		mux.Handle("/mcp", s.app.MCPHandler)
	}

	// API routes
	mux.HandleFunc("/api/health", s.app.HealthHandler.ServeHTTP)
	mux.HandleFunc("/api/version", s.app.VersionHandler.ServeHTTP)

	mux.HandleFunc("/api/stock/", s.app.StockHandler.HandleStock)
	mux.HandleFunc("/api/quote/", s.app.StockHandler.HandleQuote)

	mux.HandleFunc("/api/alerts", s.app.AlertsHandler.HandleCollection)
	mux.HandleFunc("/api/alerts/check", s.app.AlertsHandler.HandleCheck)
	mux.HandleFunc("/api/alerts/", s.app.AlertsHandler.HandleItem)

	mux.HandleFunc("/api/portfolio/optimize", s.app.PortfolioHandler.ServeHTTP)

	mux.HandleFunc("/api/watchlist", s.app.WatchlistHandler.HandleCollection)
	mux.HandleFunc("/api/watchlist/summary", s.app.WatchlistHandler.HandleSummary)
	mux.HandleFunc("/api/watchlist/", s.app.WatchlistHandler.HandleItem)

	mux.HandleFunc("/api/market/status", s.app.MarketHandler.HandleStatus)
	mux.HandleFunc("/api/market/assets", s.app.MarketHandler.HandleAssets)
	mux.HandleFunc("/api/market/movers", s.app.MarketHandler.HandleMovers)
	mux.HandleFunc("/api/market/calendar", s.app.MarketHandler.HandleCalendar)

	mux.HandleFunc("/api/dashboard", s.app.DashboardHandler.ServeHTTP)

	mux.HandleFunc("/api/reward/status", s.app.RewardHandler.HandleStatus)
	mux.HandleFunc("/api/reward/session", s.app.RewardHandler.HandleSession)
	mux.HandleFunc("/api/reward/ad-completed", s.app.RewardHandler.HandleAdCompleted)
	mux.HandleFunc("/api/reward/ad-failed", s.app.RewardHandler.HandleAdFailed)
	mux.HandleFunc("/api/reward/purchase", s.app.RewardHandler.HandlePurchase)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.handleNotFound)

	return mux
}

// handleRoot describes the service for anything that probes the root path.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.handleNotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"service":"finsight-portal","api":"/api","mcp":"/mcp"}`))
}

// handleNotFound returns a JSON 404 for unmatched API routes.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"Not Found","message":"The requested endpoint does not exist"}`))
}
