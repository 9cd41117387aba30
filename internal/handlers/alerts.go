package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/finsight/finsight-portal/internal/alerts"
	"github.com/finsight/finsight-portal/internal/client"
	"github.com/finsight/finsight-portal/internal/common"
	"github.com/finsight/finsight-portal/internal/entitlement"
	"github.com/finsight/finsight-portal/internal/models"
)

// AlertsHandler serves the alerts API. Technical-signal ("sniper") alert
// types are a premium feature and require an active entitlement.
type AlertsHandler struct {
	logger       *common.Logger
	client       *client.FinsightClient
	entitlements *entitlement.Store
	tracker      *alerts.Tracker
}

// NewAlertsHandler creates a new alerts handler.
func NewAlertsHandler(logger *common.Logger, c *client.FinsightClient, ent *entitlement.Store, tracker *alerts.Tracker) *AlertsHandler {
	return &AlertsHandler{
		logger:       logger,
		client:       c,
		entitlements: ent,
		tracker:      tracker,
	}
}

// HandleCollection handles GET and POST /api/alerts.
func (h *AlertsHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AlertsHandler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.client.ListAlerts(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("Alert list failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteData(w, list)
}

func (h *AlertsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.AlertType.IsSniper() && !h.entitlements.IsEntitled(r.Context()) {
		WriteError(w, http.StatusPaymentRequired, "sniper alerts require an active entitlement")
		return
	}

	alert, err := h.client.CreateAlert(r.Context(), &req)
	if err != nil {
		h.logger.Warn().Err(err).Str("symbol", req.Symbol).Msg("Alert create failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.logger.Info().Str("symbol", alert.Symbol).Str("type", string(alert.Type)).Msg("Alert created")
	WriteData(w, alert)
}

// HandleItem handles DELETE /api/alerts/{id}.
func (h *AlertsHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	raw := strings.TrimPrefix(r.URL.Path, "/api/alerts/")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid alert id")
		return
	}

	if err := h.client.DeleteAlert(r.Context(), id); err != nil {
		h.logger.Warn().Err(err).Int64("id", id).Msg("Alert delete failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	WriteData(w, map[string]int64{"deleted": id})
}

// HandleCheck handles GET /api/alerts/check: asks the backend to evaluate
// alert conditions, then returns only the triggers the user has not been
// notified about before.
func (h *AlertsHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	if err := h.client.CheckAlerts(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("Alert check failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	list, err := h.client.ListAlerts(r.Context())
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	fresh := h.tracker.Observe(r.Context(), list)
	if fresh == nil {
		fresh = []models.Alert{}
	}
	WriteData(w, fresh)
}
