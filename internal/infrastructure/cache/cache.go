// Package cache provides a small key-value caching layer used for
// product availability lookups.
package cache

import (
	"context"
	"time"
)

// Cache is a minimal byte-oriented cache.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Noop is a no-op cache for deployments without Redis and for tests.
type Noop struct{}

// NewNoop creates a no-op cache.
func NewNoop() Noop { return Noop{} }

func (Noop) Get(ctx context.Context, key string) ([]byte, bool, error) { return nil, false, nil }

func (Noop) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error { return nil }

func (Noop) Delete(ctx context.Context, key string) error { return nil }

func (Noop) Ping(ctx context.Context) error { return nil }

func (Noop) Close() error { return nil }
