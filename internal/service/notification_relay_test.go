package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"order-placement-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishOrderPlaced(ctx context.Context, topic string, n *models.OrderPlacedNotification) error {
	return m.Called(ctx, topic, n).Error(0)
}

// blockingPublisher waits for the context, like a broker that never acks.
type blockingPublisher struct{}

func (blockingPublisher) PublishOrderPlaced(ctx context.Context, _ string, _ *models.OrderPlacedNotification) error {
	<-ctx.Done()
	return ctx.Err()
}

// opaquePublisher fails with an error that does not wrap the context error.
type opaquePublisher struct{}

func (opaquePublisher) PublishOrderPlaced(ctx context.Context, _ string, _ *models.OrderPlacedNotification) error {
	<-ctx.Done()
	return errors.New("write aborted")
}

func TestRelaySendsOrderNumberOnly(t *testing.T) {
	pub := &mockPublisher{}
	relay := NewNotificationRelay(pub, "notificationTopic", time.Second)

	event := models.NewOrderPlacedEvent("9b2d6f0e-1111-4222-8333-444455556666")

	var sent *models.OrderPlacedNotification
	pub.On("PublishOrderPlaced", mock.Anything, "notificationTopic", mock.Anything).
		Run(func(args mock.Arguments) {
			sent = args.Get(2).(*models.OrderPlacedNotification)
		}).
		Return(nil).Once()

	require.NoError(t, relay.Handle(context.Background(), event))

	require.NotNil(t, sent)
	assert.Equal(t, models.OrderPlacedNotification{OrderNumber: event.OrderNumber}, *sent)
	pub.AssertExpectations(t)
}

func TestRelaySurfacesSendFailure(t *testing.T) {
	pub := &mockPublisher{}
	relay := NewNotificationRelay(pub, "notificationTopic", time.Second)

	cause := errors.New("broker down")
	pub.On("PublishOrderPlaced", mock.Anything, mock.Anything, mock.Anything).Return(cause).Once()

	err := relay.Handle(context.Background(), models.NewOrderPlacedEvent("n-1"))

	assert.ErrorIs(t, err, ErrNotificationSend)
	assert.ErrorIs(t, err, cause)
	pub.AssertNumberOfCalls(t, "PublishOrderPlaced", 1)
}

func TestRelayPropagatesCancellation(t *testing.T) {
	relay := NewNotificationRelay(blockingPublisher{}, "notificationTopic", 0)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := relay.Handle(ctx, models.NewOrderPlacedEvent("n-1"))

	assert.ErrorIs(t, err, ErrNotificationSend)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRelayWrapsContextErrorFromOpaqueFailure(t *testing.T) {
	relay := NewNotificationRelay(opaquePublisher{}, "notificationTopic", 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := relay.Handle(ctx, models.NewOrderPlacedEvent("n-1"))

	assert.ErrorIs(t, err, ErrNotificationSend)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "write aborted")
}

func TestRelaySendTimeout(t *testing.T) {
	relay := NewNotificationRelay(blockingPublisher{}, "notificationTopic", 20*time.Millisecond)

	err := relay.Handle(context.Background(), models.NewOrderPlacedEvent("n-1"))

	assert.ErrorIs(t, err, ErrNotificationSend)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRelayRejectsNilEvent(t *testing.T) {
	pub := &mockPublisher{}
	relay := NewNotificationRelay(pub, "notificationTopic", time.Second)

	assert.ErrorIs(t, relay.Handle(context.Background(), nil), ErrNotificationSend)
	pub.AssertNotCalled(t, "PublishOrderPlaced", mock.Anything, mock.Anything, mock.Anything)
}
