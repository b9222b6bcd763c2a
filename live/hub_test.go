package live

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesAllSubscribers(t *testing.T) {
	h := NewHub(4)
	a, cancelA := h.Subscribe()
	b, cancelB := h.Subscribe()
	defer cancelA()
	defer cancelB()

	e := Event{UserID: "3", Name: "Dr. Albert Smith", Action: ActionArrived, Time: "08:05"}
	h.Publish(e)

	assert.Equal(t, e, <-a)
	assert.Equal(t, e, <-b)
}

func TestHub_FullSubscriberDropsWithoutBlocking(t *testing.T) {
	// GIVEN: A subscriber with a one-slot buffer that never reads
	// WHEN: Three events are published
	// THEN: Publish returns, one event is buffered, two are dropped

	h := NewHub(1)
	ch, cancel := h.Subscribe()
	defer cancel()

	for i := 0; i < 3; i++ {
		h.Publish(Event{UserID: "3", Action: ActionArrived})
	}

	assert.Len(t, ch, 1)
	assert.Equal(t, uint64(2), h.Dropped())
}

func TestHub_CancelClosesChannel(t *testing.T) {
	h := NewHub(1)
	ch, cancel := h.Subscribe()
	require.Equal(t, 1, h.Subscribers())

	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, h.Subscribers())

	h.Publish(Event{UserID: "3"})
}

func TestHub_Close(t *testing.T) {
	h := NewHub(1)
	ch, cancel := h.Subscribe()
	h.Close()

	_, open := <-ch
	assert.False(t, open)
	cancel()

	late, _ := h.Subscribe()
	_, open = <-late
	assert.False(t, open)
}
