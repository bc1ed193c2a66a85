package registry

import (
	"encoding/json"
	"time"
)

const (
	EventPurchaseApproved = "PurchaseApproved"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"` // e.g., "registry-api"
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type PurchaseApprovedPayload struct {
	PurchaseID string `json:"purchase_id"`
	PaymentID  string `json:"payment_id,omitempty"`
}
