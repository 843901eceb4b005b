package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"order-placement-service/internal/models"
	"order-placement-service/internal/util"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// NotificationPublisher writes an order-placed notification to a topic and
// returns once the broker has acknowledged it.
type NotificationPublisher interface {
	PublishOrderPlaced(ctx context.Context, topic string, n *models.OrderPlacedNotification) error
}

// NotificationRelay forwards order-placed events to the notification topic
type NotificationRelay struct {
	publisher   NotificationPublisher
	topic       string
	sendTimeout time.Duration
	logger      *zap.Logger
}

// NewNotificationRelay creates a relay. A zero sendTimeout leaves the send
// bounded only by the context passed to Handle.
func NewNotificationRelay(publisher NotificationPublisher, topic string, sendTimeout time.Duration) *NotificationRelay {
	return &NotificationRelay{
		publisher:   publisher,
		topic:       topic,
		sendTimeout: sendTimeout,
		logger:      util.GetLogger(),
	}
}

// Handle sends a fresh notification built from the event's order number and
// waits for the acknowledgement. One attempt is made. When ctx is cancelled
// or times out the returned error wraps the context error as well.
func (r *NotificationRelay) Handle(ctx context.Context, event *models.OrderPlacedEvent) error {
	if event == nil {
		return fmt.Errorf("%w: nil event", ErrNotificationSend)
	}

	r.logger.Info("Order placed event received, sending notification",
		zap.String("order_number", event.OrderNumber),
		zap.String("topic", r.topic))

	ctx, span := util.StartSpan(ctx, "notification-topic",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.destination", r.topic),
			attribute.String("order.number", event.OrderNumber),
		))
	defer span.End()

	if r.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.sendTimeout)
		defer cancel()
	}

	notification := &models.OrderPlacedNotification{OrderNumber: event.OrderNumber}

	if err := r.publisher.PublishOrderPlaced(ctx, r.topic, notification); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
		util.NotificationsFailedTotal.Inc()
		return fmt.Errorf("%w: %w", ErrNotificationSend, err)
	}

	util.NotificationsSentTotal.Inc()
	return nil
}
