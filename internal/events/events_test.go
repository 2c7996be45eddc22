package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishJSONDeliversToSubscribers(t *testing.T) {
	bus := NewEventBus()

	var received []*Event
	bus.Subscribe(EventBookingCreated, func(event *Event) error {
		received = append(received, event)
		return nil
	})

	payload := BookingEventPayload{BookingID: 7, Title: "Treino", Status: "pending"}
	require.NoError(t, bus.PublishJSON(EventBookingCreated, payload))

	require.Len(t, received, 1)
	assert.Equal(t, EventBookingCreated, received[0].Type)
	assert.False(t, received[0].CreatedAt.IsZero())

	var decoded BookingEventPayload
	require.NoError(t, json.Unmarshal(received[0].Payload, &decoded))
	assert.Equal(t, int64(7), decoded.BookingID)
}

func TestPublishOnlyMatchingType(t *testing.T) {
	bus := NewEventBus()

	created, approved := 0, 0
	bus.Subscribe(EventBookingCreated, func(*Event) error { created++; return nil })
	bus.Subscribe(EventBookingApproved, func(*Event) error { approved++; return nil })

	require.NoError(t, bus.PublishJSON(EventBookingApproved, BookingEventPayload{BookingID: 1}))

	assert.Equal(t, 0, created)
	assert.Equal(t, 1, approved)
}

func TestPublishWithoutSubscribersIsSafe(t *testing.T) {
	bus := NewEventBus()
	assert.NoError(t, bus.PublishJSON(EventBookingDeleted, BookingEventPayload{BookingID: 1}))
}

func TestNilBusPublishIsNoop(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventBookingCreated, BookingEventPayload{}))
}
