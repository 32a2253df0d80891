package cache

import (
	"context"
	"sync"
	"time"
)

// flight is one coalesced execution. val and err are written exactly
// once, before done is closed.
type flight struct {
	done chan struct{}
	val  []byte
	err  error
}

// Coalescer merges near-simultaneous requests sharing a key into one
// underlying call. The first caller for a key opens a flight and arms
// the delay window; callers arriving while the flight is open attach as
// followers. Exactly one fn executes per flight and every attached
// caller observes its single result. At most one flight exists per key
// at any time, so a superseded execution can never overwrite the cache.
type Coalescer struct {
	window time.Duration

	mu      sync.Mutex
	flights map[string]*flight
}

// NewCoalescer creates a coalescer with the given delay window.
// A zero window still coalesces callers that overlap an in-flight call.
func NewCoalescer(window time.Duration) *Coalescer {
	return &Coalescer{
		window:  window,
		flights: make(map[string]*flight),
	}
}

// Do executes fn once per open flight for key and returns its result.
// joined reports whether this caller attached to a flight another
// caller opened. A caller whose own context expires detaches with
// ctx.Err(); the flight itself is not cancelled and completes for the
// remaining followers.
func (c *Coalescer) Do(ctx context.Context, key string, fn func(ctx context.Context) ([]byte, error)) (val []byte, joined bool, err error) {
	c.mu.Lock()
	if f, ok := c.flights[key]; ok {
		c.mu.Unlock()
		select {
		case <-f.done:
			return f.val, true, f.err
		case <-ctx.Done():
			return nil, true, ctx.Err()
		}
	}

	f := &flight{done: make(chan struct{})}
	c.flights[key] = f
	c.mu.Unlock()

	go c.run(key, f, fn)

	select {
	case <-f.done:
		return f.val, false, f.err
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

func (c *Coalescer) run(key string, f *flight, fn func(ctx context.Context) ([]byte, error)) {
	// Hold the flight open for the delay window so rapid-fire callers
	// attach before the single execution starts.
	if c.window > 0 {
		time.Sleep(c.window)
	}

	// The execution is detached from any single caller's context: one
	// impatient caller must not cancel the result for its followers.
	f.val, f.err = fn(context.Background())

	// Remove the flight before publishing the result so a caller
	// arriving after completion opens a fresh one.
	c.mu.Lock()
	delete(c.flights, key)
	c.mu.Unlock()
	close(f.done)
}
