package models

import (
	"fmt"
	"strings"
)

// AlertType categorizes price alerts.
type AlertType string

const (
	AlertTypePrice       AlertType = "PRICE"
	AlertTypeRSIOversold AlertType = "RSI_OVERSOLD"
	AlertTypeGoldenCross AlertType = "GOLDEN_CROSS"
	AlertTypePriceDrop   AlertType = "PRICE_DROP"
)

// ValidAlertType returns true if the type is one of the supported kinds.
func ValidAlertType(t AlertType) bool {
	switch t {
	case AlertTypePrice, AlertTypeRSIOversold, AlertTypeGoldenCross, AlertTypePriceDrop:
		return true
	}
	return false
}

// IsSniper reports whether the alert type is a technical-signal ("sniper")
// alert. Sniper alerts are a gated premium feature.
func (t AlertType) IsSniper() bool {
	return ValidAlertType(t) && t != AlertTypePrice
}

// Alert statuses as reported by finsight-server.
const (
	AlertStatusActive    = "active"
	AlertStatusTriggered = "triggered"
)

// Alert represents one price or technical-signal alert.
type Alert struct {
	ID             int64     `json:"id"`
	Symbol         string    `json:"symbol"`
	Type           AlertType `json:"type"`
	TargetPrice    float64   `json:"target_price"`
	Condition      string    `json:"condition"`
	ChatID         string    `json:"chat_id,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      string    `json:"created_at"`
	TriggeredAt    string    `json:"triggered_at,omitempty"`
	TriggeredPrice float64   `json:"triggered_price,omitempty"`
}

// SeenMarker returns the identity of one trigger event. The alert ID alone is
// not enough: the same alert can re-trigger, so the marker includes the
// trigger timestamp.
func (a *Alert) SeenMarker() string {
	return fmt.Sprintf("%d_%s", a.ID, a.TriggeredAt)
}

// CreateAlertRequest is the payload for creating an alert.
type CreateAlertRequest struct {
	Symbol      string    `json:"symbol"`
	AlertType   AlertType `json:"alert_type"`
	TargetPrice float64   `json:"target_price"`
	Condition   string    `json:"condition"`
	ChatID      string    `json:"chat_id,omitempty"`
}

// Validate checks the request before any network round trip is made.
func (r *CreateAlertRequest) Validate() error {
	if strings.TrimSpace(r.Symbol) == "" {
		return fmt.Errorf("symbol is required")
	}
	if !ValidAlertType(r.AlertType) {
		return fmt.Errorf("unsupported alert type %q", r.AlertType)
	}
	if r.AlertType == AlertTypePrice {
		if r.TargetPrice <= 0 {
			return fmt.Errorf("target_price must be positive for PRICE alerts")
		}
		if r.Condition != "above" && r.Condition != "below" {
			return fmt.Errorf("condition must be \"above\" or \"below\" (got %q)", r.Condition)
		}
	}
	return nil
}
