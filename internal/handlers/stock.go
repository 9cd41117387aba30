package handlers

import (
	"net/http"
	"strings"

	"github.com/finsight/finsight-portal/internal/cache"
	"github.com/finsight/finsight-portal/internal/client"
	"github.com/finsight/finsight-portal/internal/common"
	"github.com/finsight/finsight-portal/internal/models"
)

// snapshotCacheEntries bounds the snapshot cache; the key space is tickers
// viewed in one session, so the bound is generous.
const snapshotCacheEntries = 256

// StockHandler serves stock snapshots and live quotes. Snapshots are
// cached briefly so fast navigation between tickers does not refetch.
type StockHandler struct {
	logger    *common.Logger
	client    *client.FinsightClient
	snapshots *cache.Cache[*models.StockSnapshot]
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(logger *common.Logger, c *client.FinsightClient) *StockHandler {
	return &StockHandler{
		logger:    logger,
		client:    c,
		snapshots: cache.New[*models.StockSnapshot](common.FreshnessSnapshot, snapshotCacheEntries),
	}
}

// HandleStock handles GET /api/stock/{ticker}.
func (h *StockHandler) HandleStock(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	ticker := strings.TrimPrefix(r.URL.Path, "/api/stock/")
	if ticker == "" || strings.Contains(ticker, "/") {
		WriteError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	if snap, ok := h.snapshots.Get(ticker); ok {
		WriteData(w, snap)
		return
	}

	snap, err := h.client.GetStock(r.Context(), ticker)
	if err != nil {
		h.logger.Warn().Err(err).Str("ticker", ticker).Msg("Stock fetch failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.snapshots.Put(ticker, snap)
	WriteData(w, snap)
}

// HandleQuote handles GET /api/quote/{symbol}. Quotes are live and never
// served from cache.
func (h *StockHandler) HandleQuote(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	symbol := strings.TrimPrefix(r.URL.Path, "/api/quote/")
	if symbol == "" || strings.Contains(symbol, "/") {
		WriteError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	quote, err := h.client.GetQuote(r.Context(), symbol)
	if err != nil {
		h.logger.Warn().Err(err).Str("symbol", symbol).Msg("Quote fetch failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	WriteData(w, quote)
}
