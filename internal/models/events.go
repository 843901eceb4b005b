package models

import (
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventTypeOrderPlaced = "ORDER_PLACED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent is raised in-process once an order has been committed.
type OrderPlacedEvent struct {
	BaseEvent
	OrderNumber string `json:"orderNumber"`
}

// NewOrderPlacedEvent creates the event for a committed order.
func NewOrderPlacedEvent(orderNumber string) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseEvent: BaseEvent{
			EventID:   uuid.New().String(),
			EventType: EventTypeOrderPlaced,
			Timestamp: time.Now().UTC(),
		},
		OrderNumber: orderNumber,
	}
}

// OrderPlacedNotification is the payload written to the notification topic.
// It carries the order number and nothing else.
type OrderPlacedNotification struct {
	OrderNumber string `json:"orderNumber"`
}
