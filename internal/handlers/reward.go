package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/finsight/finsight-portal/internal/common"
	"github.com/finsight/finsight-portal/internal/entitlement"
	"github.com/finsight/finsight-portal/internal/reward"
)

// RewardHandler exposes the entitlement state and the rewarded-ad session
// flow. The session uses the campaign parameters from configuration; the
// ad collaborator reports back through the ad-completed and ad-failed
// endpoints.
type RewardHandler struct {
	logger        *common.Logger
	entitlements  *entitlement.Store
	controller    *reward.Controller
	targetAds     int
	rewardMinutes int
}

// NewRewardHandler creates a new reward handler.
func NewRewardHandler(logger *common.Logger, ent *entitlement.Store, ctrl *reward.Controller, targetAds, rewardMinutes int) *RewardHandler {
	return &RewardHandler{
		logger:        logger,
		entitlements:  ent,
		controller:    ctrl,
		targetAds:     targetAds,
		rewardMinutes: rewardMinutes,
	}
}

// HandleStatus handles GET /api/reward/status.
func (h *RewardHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	status := map[string]interface{}{
		"entitled": h.entitlements.IsEntitled(r.Context()),
		"session":  h.controller.Progress(),
	}

	if remaining, permanent, ok := h.entitlements.TimeRemaining(r.Context()); ok {
		status["permanent"] = permanent
		if !permanent {
			status["remaining_ms"] = remaining.Milliseconds()
			status["remaining"] = common.FormatRemaining(remaining)
		}
	}

	WriteJSON(w, http.StatusOK, status)
}

// HandleSession handles POST (start) and DELETE (cancel) /api/reward/session.
func (h *RewardHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.start(w, r)
	case http.MethodDelete:
		h.controller.Cancel()
		WriteData(w, h.controller.Progress())
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *RewardHandler) start(w http.ResponseWriter, r *http.Request) {
	err := h.controller.Start(r.Context(), h.targetAds, h.rewardMinutes)
	if errors.Is(err, reward.ErrSessionActive) {
		WriteError(w, http.StatusConflict, "a reward session is already in progress")
		return
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteData(w, h.controller.Progress())
}

// HandleAdCompleted handles POST /api/reward/ad-completed, reported by the
// ad collaborator when one unit finishes.
func (h *RewardHandler) HandleAdCompleted(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.controller.OnAdCompleted(r.Context())
	WriteData(w, h.controller.Progress())
}

// HandleAdFailed handles POST /api/reward/ad-failed.
func (h *RewardHandler) HandleAdFailed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Reason == "" {
		req.Reason = "ad failed"
	}

	h.controller.OnAdFailed(req.Reason)
	WriteData(w, h.controller.Progress())
}

// HandlePurchase handles POST /api/reward/purchase: confirmation of a
// permanent purchase from the payment collaborator.
func (h *RewardHandler) HandlePurchase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.entitlements.GrantPermanent(r.Context())
	h.logger.Info().Msg("Permanent entitlement purchased")
	WriteData(w, map[string]bool{"entitled": true, "permanent": true})
}
