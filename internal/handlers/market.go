package handlers

import (
	"net/http"

	"github.com/finsight/finsight-portal/internal/client"
	"github.com/finsight/finsight-portal/internal/common"
)

// MarketHandler serves market-wide data: status, tracked assets, top
// movers and the event calendar. Straight pass-throughs to finsight-server.
type MarketHandler struct {
	logger *common.Logger
	client *client.FinsightClient
}

// NewMarketHandler creates a new market handler.
func NewMarketHandler(logger *common.Logger, c *client.FinsightClient) *MarketHandler {
	return &MarketHandler{logger: logger, client: c}
}

// HandleStatus handles GET /api/market/status.
func (h *MarketHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	status, err := h.client.GetMarketStatus(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("Market status fetch failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteData(w, status)
}

// HandleAssets handles GET /api/market/assets.
func (h *MarketHandler) HandleAssets(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	assets, err := h.client.GetAssets(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("Asset fetch failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteData(w, assets)
}

// HandleMovers handles GET /api/market/movers?market=KR.
func (h *MarketHandler) HandleMovers(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	market := r.URL.Query().Get("market")
	if market == "" {
		market = "KR"
	}
	movers, err := h.client.GetTopMovers(r.Context(), market)
	if err != nil {
		h.logger.Warn().Err(err).Str("market", market).Msg("Top movers fetch failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteData(w, movers)
}

// HandleCalendar handles GET /api/market/calendar.
func (h *MarketHandler) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	events, err := h.client.GetCalendar(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("Calendar fetch failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteData(w, events)
}
