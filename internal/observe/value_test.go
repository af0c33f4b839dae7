package observe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}

func TestValue_SubscribeEmitsCurrentFirst(t *testing.T) {
	v := NewValue(3)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := v.Subscribe(ctx)
	assert.Equal(t, 3, receive(t, ch))

	v.Set(4)
	assert.Equal(t, 4, receive(t, ch))
	assert.Equal(t, 4, v.Get())
}

func TestValue_SlowSubscriberSeesLatest(t *testing.T) {
	v := NewValue("a")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := v.Subscribe(ctx)
	v.Set("b")
	v.Set("c")
	v.Set("d")

	assert.Equal(t, "d", receive(t, ch))
}

func TestValue_ChannelClosedOnCancel(t *testing.T) {
	v := NewValue(1)
	ctx, cancel := context.WithCancel(context.Background())

	ch := v.Subscribe(ctx)
	receive(t, ch)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}

	// Setting after unsubscribe must not block or panic.
	v.Set(2)
}
