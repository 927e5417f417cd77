// Package events defines the order lifecycle messages published after a
// unit of work commits.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	OrderCreated       Type = "order.created"
	OrderStatusChanged Type = "order.status_changed"
	OrderDeleted       Type = "order.deleted"
	StockLow           Type = "stock.low"
)

const Version = 1

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     Type            `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type ItemQty struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type OrderCreatedPayload struct {
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	UserID      string    `json:"user_id"`
	TotalAmount string    `json:"total_amount"`
	Items       []ItemQty `json:"items"`
}

type OrderStatusChangedPayload struct {
	OrderID       string `json:"order_id"`
	From          string `json:"from"`
	To            string `json:"to"`
	DeliveryManID string `json:"delivery_man_id,omitempty"`
	StockRestored bool   `json:"stock_restored"`
}

type OrderDeletedPayload struct {
	OrderID       string `json:"order_id"`
	StockRestored bool   `json:"stock_restored"`
}

type StockLowPayload struct {
	OrderID             string `json:"order_id"`
	ProductID           string `json:"product_id"`
	ProductName         string `json:"product_name"`
	RemainingAfterOrder int    `json:"remaining_after_order"`
}

func New(t Type, producer, correlationID, traceID string, payload any) (Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", t, err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     t,
		EventVersion:  Version,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		TraceID:       traceID,
		CorrelationID: correlationID,
		Payload:       b,
	}, nil
}

func Decode(b []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.EventType == "" {
		return Envelope{}, fmt.Errorf("decode envelope: missing event_type")
	}
	return env, nil
}

func UnwrapPayload[T any](env Envelope) (T, error) {
	var t T
	if err := json.Unmarshal(env.Payload, &t); err != nil {
		return t, fmt.Errorf("decode %s payload: %w", env.EventType, err)
	}
	return t, nil
}
