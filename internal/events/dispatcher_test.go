package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishRunsEveryHandler(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string

	d.Subscribe(EventTicketPurchased, func(_ context.Context, _ Event) error {
		calls = append(calls, "first")
		return errors.New("first failed")
	})
	d.Subscribe(EventTicketPurchased, func(_ context.Context, _ Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventTicketCancelled, func(_ context.Context, _ Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketPurchased})
	assert.EqualError(t, err, "first failed")
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestSubscribeAll(t *testing.T) {
	d := NewInMemoryDispatcher()
	seen := map[EventType]int{}
	SubscribeAll(d, func(_ context.Context, e Event) error {
		seen[e.Type]++
		return nil
	})
	for _, eventType := range AllTypes {
		assert.NoError(t, d.Publish(context.Background(), Event{Type: eventType}))
	}
	assert.Len(t, seen, len(AllTypes))
}

func TestNilRedisPublisherDrops(t *testing.T) {
	p := NewRedisPublisher(nil, "ch", nil)
	assert.NoError(t, p.Handle(context.Background(), Event{Type: EventSalesAdjusted}))
}
