package worker

import (
	"context"
	"errors"
	"sync"

	"order-placement-service/internal/models"
	"order-placement-service/internal/util"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrStopped is returned by Dispatch after Stop has been called
var ErrStopped = errors.New("notification worker stopped")

// EventHandler processes one order-placed event
type EventHandler interface {
	Handle(ctx context.Context, event *models.OrderPlacedEvent) error
}

// job is a queued event together with the span context of the request that
// produced it, so the relay span continues the same trace.
type job struct {
	spanContext trace.SpanContext
	event       *models.OrderPlacedEvent
}

// NotificationWorker delivers order-placed events to the relay in the
// background. Handler errors are logged and counted; the orders they refer to
// are already committed.
type NotificationWorker struct {
	handler EventHandler
	queue   chan job
	workers int
	logger  *zap.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewNotificationWorker creates a worker pool with a bounded queue
func NewNotificationWorker(handler EventHandler, workers, queueSize int) *NotificationWorker {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &NotificationWorker{
		handler: handler,
		queue:   make(chan job, queueSize),
		workers: workers,
		logger:  util.GetLogger(),
	}
}

// Start launches the workers. Cancelling ctx aborts in-flight sends.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.logger.Info("Starting notification worker", zap.Int("workers", w.workers))

	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for j := range w.queue {
				w.handle(ctx, j)
			}
		}()
	}
}

func (w *NotificationWorker) handle(ctx context.Context, j job) {
	if j.spanContext.IsValid() {
		ctx = trace.ContextWithSpanContext(ctx, j.spanContext)
	}

	event := j.event
	if err := w.handler.Handle(ctx, event); err != nil {
		w.logger.Error("Failed to relay order placed notification",
			append(util.TraceFields(ctx),
				zap.String("order_number", event.OrderNumber),
				zap.String("event_id", event.EventID),
				zap.Bool("cancelled", errors.Is(err, context.Canceled)),
				zap.Error(err))...)
	}
}

// Dispatch enqueues event, blocking while the queue is full
func (w *NotificationWorker) Dispatch(ctx context.Context, event *models.OrderPlacedEvent) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.stopped {
		return ErrStopped
	}

	j := job{spanContext: trace.SpanContextFromContext(ctx), event: event}

	// enqueue when there is room, even if ctx is already done
	select {
	case w.queue <- j:
		return nil
	default:
	}

	select {
	case w.queue <- j:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop stops accepting events and waits for queued ones to be handled
func (w *NotificationWorker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.queue)
	w.mu.Unlock()

	w.logger.Info("Stopping notification worker...")
	w.wg.Wait()
}
