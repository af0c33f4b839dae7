// Package observe provides a single-writer, multi-reader value whose
// readers receive immutable snapshots.
package observe

import (
	"context"
	"sync"
)

// Value holds the latest snapshot of T and fans every replacement out to
// subscribers. Subscribers that fall behind only ever see the newest
// snapshot; intermediate values may be skipped but never torn.
type Value[T any] struct {
	mu      sync.Mutex
	current T
	subs    map[chan T]struct{}
}

// NewValue returns a Value initialised to v.
func NewValue[T any](v T) *Value[T] {
	return &Value[T]{
		current: v,
		subs:    make(map[chan T]struct{}),
	}
}

// Get returns the current snapshot.
func (o *Value[T]) Get() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// Set replaces the snapshot and notifies all subscribers.
func (o *Value[T]) Set(v T) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.current = v
	for ch := range o.subs {
		offer(ch, v)
	}
}

// Subscribe returns a channel that yields the current snapshot
// immediately and then every subsequent one. The channel is closed once
// ctx is done.
func (o *Value[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, 1)

	o.mu.Lock()
	ch <- o.current
	o.subs[ch] = struct{}{}
	o.mu.Unlock()

	go func() {
		<-ctx.Done()
		o.mu.Lock()
		delete(o.subs, ch)
		close(ch)
		o.mu.Unlock()
	}()

	return ch
}

// offer delivers v on a 1-slot channel, replacing any unread value.
// Callers must hold the Value lock.
func offer[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
