package broadcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/torb/strategies/torb"
)

func TestHubFanOut(t *testing.T) {
	t.Parallel()

	h := NewHub()
	a, unsubA := h.Subscribe(1)
	b, unsubB := h.Subscribe(1)
	defer unsubB()
	assert.Equal(t, 2, h.Subscribers())

	h.Publish(torb.Signal{ID: "s1", Symbol: "USD_JPY"})

	require.Equal(t, "s1", (<-a).ID)
	require.Equal(t, "s1", (<-b).ID)

	unsubA()
	unsubA()
	_, ok := <-a
	assert.False(t, ok, "unsubscribe closes the channel")
	assert.Equal(t, 1, h.Subscribers())
}

func TestHubDoesNotBlock(t *testing.T) {
	t.Parallel()

	h := NewHub()
	ch, unsub := h.Subscribe(1)
	defer unsub()

	h.Publish(torb.Signal{ID: "s1"})
	h.Publish(torb.Signal{ID: "s2"})

	assert.Equal(t, uint64(1), h.Dropped())
	assert.Equal(t, "s1", (<-ch).ID)
}

func TestHubClose(t *testing.T) {
	t.Parallel()

	h := NewHub()
	ch, unsub := h.Subscribe(0)
	h.Close()
	h.Close()

	_, ok := <-ch
	assert.False(t, ok)
	unsub()

	late, _ := h.Subscribe(1)
	_, ok = <-late
	assert.False(t, ok)

	h.Publish(torb.Signal{ID: "ignored"})
	assert.Zero(t, h.Subscribers())
}
