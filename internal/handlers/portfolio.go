package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/finsight/finsight-portal/internal/client"
	"github.com/finsight/finsight-portal/internal/common"
	"github.com/finsight/finsight-portal/internal/entitlement"
	"github.com/finsight/finsight-portal/internal/models"
)

// PortfolioHandler serves POST /api/portfolio/optimize. The optimizer is a
// premium feature; the entitlement is re-checked on every call rather than
// trusted from the caller.
type PortfolioHandler struct {
	logger       *common.Logger
	client       *client.FinsightClient
	entitlements *entitlement.Store
}

// NewPortfolioHandler creates a new portfolio handler.
func NewPortfolioHandler(logger *common.Logger, c *client.FinsightClient, ent *entitlement.Store) *PortfolioHandler {
	return &PortfolioHandler{
		logger:       logger,
		client:       c,
		entitlements: ent,
	}
}

// ServeHTTP handles POST /api/portfolio/optimize.
func (h *PortfolioHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.entitlements.IsEntitled(r.Context()) {
		WriteError(w, http.StatusPaymentRequired, "portfolio optimization requires an active entitlement")
		return
	}

	var req models.OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.client.OptimizePortfolio(r.Context(), req.Symbols)
	if err != nil {
		h.logger.Warn().Err(err).Int("symbols", len(req.Symbols)).Msg("Portfolio optimization failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	WriteData(w, result)
}
