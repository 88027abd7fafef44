package live

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rutregistro/internal/model"
)

func TestHub_PublishReachesSubscribers(t *testing.T) {
	h := NewHub()

	ch1, cancel1 := h.Subscribe()
	ch2, cancel2 := h.Subscribe()
	defer cancel1()
	defer cancel2()

	snapshot := []model.Record{{ID: "a", RUT: "123456785"}}
	h.Publish(snapshot)

	assert.Equal(t, snapshot, <-ch1)
	assert.Equal(t, snapshot, <-ch2)
}

func TestHub_LateSubscriberGetsLastSnapshot(t *testing.T) {
	h := NewHub()
	h.Publish([]model.Record{{ID: "a"}})

	ch, cancel := h.Subscribe()
	defer cancel()

	got := <-ch
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}

func TestHub_SlowSubscriberKeepsLatestOnly(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()
	defer cancel()

	h.Publish([]model.Record{{ID: "old"}})
	h.Publish([]model.Record{{ID: "new"}})

	got := <-ch
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].ID)
}

func TestHub_CancelClosesChannelAndStopsDelivery(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()

	cancel()
	// Double cancel is harmless.
	cancel()

	_, open := <-ch
	assert.False(t, open)

	// Publishing after cancellation must not panic on a closed channel.
	h.Publish([]model.Record{{ID: "a"}})
}
