package handlers

import (
	"net/http"

	"github.com/finsight/finsight-portal/internal/common"
	"github.com/finsight/finsight-portal/internal/poller"
)

// DashboardHandler serves GET /api/dashboard: the latest polled view of
// the market (status, assets, top movers, watchlist, calendar, alerts)
// without any backend round trip.
type DashboardHandler struct {
	logger *common.Logger
	poller *poller.Poller
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(logger *common.Logger, p *poller.Poller) *DashboardHandler {
	return &DashboardHandler{logger: logger, poller: p}
}

// ServeHTTP handles GET /api/dashboard.
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	snapshot := h.poller.Snapshot()
	resources := make(map[string]interface{}, len(snapshot))
	for name, u := range snapshot {
		resources[name] = map[string]interface{}{
			"data":       u.Data,
			"updated_at": u.UpdatedAt,
		}
	}

	WriteData(w, resources)
}
