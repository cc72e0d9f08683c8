package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabletap/models"
)

func TestHubDeliversToSubscribers(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	first := hub.Subscribe(1)
	second := hub.Subscribe(1)

	event := OrderEvent{Type: OrderCreated, OrderID: 1, TableNumber: 5, Status: models.OrderStatusCreated}
	require.NoError(t, hub.PublishOrderEvent(context.Background(), event))

	assert.Equal(t, event, <-first.C)
	assert.Equal(t, event, <-second.C)
}

func TestHubCancelClosesChannel(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	sub := hub.Subscribe(1)
	sub.Cancel()
	sub.Cancel() // cancelling twice is fine

	_, ok := <-sub.C
	assert.False(t, ok, "cancelled subscription channel is closed")

	// Publishing after cancel must not panic or deliver.
	require.NoError(t, hub.PublishOrderEvent(context.Background(), OrderEvent{Type: OrderUpdated}))
}

func TestHubSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	slow := hub.Subscribe(1)
	defer slow.Cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			_ = hub.PublishOrderEvent(context.Background(), OrderEvent{Type: OrderUpdated, OrderID: uint(i)})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	// The subscriber still gets at least the first event.
	assert.Equal(t, uint(0), (<-slow.C).OrderID)
}

func TestHubCloseCancelsEverything(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(1)

	hub.Close()

	_, ok := <-sub.C
	assert.False(t, ok)

	late := hub.Subscribe(1)
	_, ok = <-late.C
	assert.False(t, ok, "subscribing to a closed hub yields a closed channel")
}
