package cachestore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidGroup is returned when a throttle group key has fewer than
	// two path segments. Groups must be namespaced to avoid collisions
	// between unrelated operations.
	ErrInvalidGroup = errors.New("cachestore: throttle group needs at least two segments")
	// ErrSuperseded means a later request under the same group replaced
	// this one before its delay elapsed. Steady-state for bursty callers
	// such as autocomplete, not a failure.
	ErrSuperseded = errors.New("cachestore: throttled request superseded")
)

// throttleBuffer keeps the marker alive past the delay so a slow re-read
// never misses its own write.
const throttleBuffer = 10 * time.Second

// Throttle collapses a burst of requests sharing a group so only the latest
// one proceeds. It stores value under the group key, waits out delay, and
// succeeds only if value is still the latest write. Writes are
// last-writer-wins at the backing store's granularity; two calls racing
// within the same instant may both win, which callers accept.
func (c *Client) Throttle(ctx context.Context, group []string, value string, delay time.Duration) error {
	if len(group) < 2 {
		return ErrInvalidGroup
	}
	key := Key(append(append(make([]string, 0, len(group)+1), group...), "throttle")...)

	if err := c.store.SetEx(ctx, key, value, delay+throttleBuffer); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheWrite, err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
	}

	latest, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("cachestore: throttle re-read %s: %w", key, err)
	}
	if !ok || latest != value {
		return ErrSuperseded
	}
	return nil
}
