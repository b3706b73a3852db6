// Package cachestore is the short-lived staging store for multi-step
// interaction workflows. Values are serialized JSON payloads with a per-key
// expiry; cross-interaction atomicity (read-once drafts, last-writer-wins
// throttling) is delegated to the backing store's primitives rather than
// in-process locks.
package cachestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheWrite indicates the backing store rejected or never received
	// a write.
	ErrCacheWrite = errors.New("cachestore: write failed")
	// ErrCacheRead indicates a stored payload was not recognizable as one
	// produced by this store's serializer. A missing key is not an error.
	ErrCacheRead = errors.New("cachestore: unreadable payload")
)

// kv is the minimal backing-store surface the cachestore needs. GetDel must
// perform retrieval and deletion as one atomic step.
type kv interface {
	SetEx(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	GetDel(ctx context.Context, key string) (string, bool, error)
	Del(ctx context.Context, key string) error
}

// Client stores and retrieves expiring JSON payloads.
type Client struct {
	store kv
}

// New returns a Client backed by the given Redis connection.
func New(rdb *redis.Client) *Client {
	return newClient(redisKV{rdb: rdb})
}

func newClient(store kv) *Client {
	return &Client{store: store}
}

// Key joins path segments into a cache key.
func Key(parts ...string) string {
	return strings.Join(parts, "/")
}

// Set serializes value and stores it under key with the given expiry.
func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := encode(value)
	if err != nil {
		return err
	}
	if err := c.store.SetEx(ctx, key, raw, ttl); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheWrite, err)
	}
	return nil
}

// Get retrieves the value stored under key into dest, reporting whether the
// key was present. With del set, retrieval and deletion happen as a single
// atomic step so that two near-simultaneous readers cannot both observe the
// value.
func (c *Client) Get(ctx context.Context, key string, dest any, del bool) (bool, error) {
	var (
		raw string
		ok  bool
		err error
	)
	if del {
		raw, ok, err = c.store.GetDel(ctx, key)
	} else {
		raw, ok, err = c.store.Get(ctx, key)
	}
	if err != nil {
		return false, fmt.Errorf("cachestore: get %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := decode(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes key. Deleting an absent key is not an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	return c.store.Del(ctx, key)
}

// redisKV adapts go-redis to the kv surface.
type redisKV struct {
	rdb *redis.Client
}

func (r redisKV) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.rdb.SetEx(ctx, key, value, ttl).Err()
}

func (r redisKV) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r redisKV) GetDel(ctx context.Context, key string) (string, bool, error) {
	val, err := r.rdb.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r redisKV) Del(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, key).Err()
}
