package broker

import (
	"context"

	"order-placement-service/internal/models"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrderPlaced writes the notification to topic, keyed by order number
// so all messages for one order land on the same partition.
func (ep *EventPublisher) PublishOrderPlaced(ctx context.Context, topic string, n *models.OrderPlacedNotification) error {
	return ep.producer.PublishEvent(ctx, topic, n.OrderNumber, n)
}
