// Package db defines the storage contract of the shared result cache tier.
package db

import (
	"context"
	"time"
)

// Store is a remote blob store with expiring entries.
type Store interface {
	Pinger
	BlobStore
	Close()
	// WaitForReady blocks until the store answers a ping or timeout expires.
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BlobStore stores opaque values by key. Get returns ErrKeyNotFound for a
// missing or expired key and *Error for transport failures.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}
