package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// EventPaymentCaptured is the only provider event that changes state.
const EventPaymentCaptured = "payment.captured"

// Note keys embedded into provider orders and echoed back on payments.
const (
	NoteUserID  = "userId"
	NoteBatchID = "batchId"
)

// WebhookEvent is the provider's callback envelope. Payload stays raw until
// the event type says it is worth decoding.
type WebhookEvent struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// WebhookPayload carries the entities attached to an event.
type WebhookPayload struct {
	Payment *WebhookPaymentWrapper `json:"payment"`
}

// WebhookPaymentWrapper wraps the payment entity.
type WebhookPaymentWrapper struct {
	Entity PaymentEntity `json:"entity"`
}

// PaymentEntity is the provider's payment object. Amount is in paise.
type PaymentEntity struct {
	ID      string       `json:"id"`
	OrderID string       `json:"order_id"`
	Amount  int64        `json:"amount"`
	Notes   PaymentNotes `json:"notes"`
}

// PaymentNotes holds the application context passed through the order.
type PaymentNotes struct {
	UserID  string `json:"userId"`
	BatchID string `json:"batchId"`
}

// UnmarshalJSON accepts the provider's loose notes shape. Entities without
// notes carry an empty array, and note values may be numbers.
func (n *PaymentNotes) UnmarshalJSON(data []byte) error {
	*n = PaymentNotes{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	n.UserID = noteValue(raw[NoteUserID])
	n.BatchID = noteValue(raw[NoteBatchID])
	return nil
}

func noteValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		return num.String()
	}
	return ""
}
