// Package kv provides the keyed blob storage backing the anonymous
// bookmark store: one opaque JSON blob per key.
package kv

import (
	"context"
	"errors"
)

// ErrNoKey is returned by Get when the key has never been written.
var ErrNoKey = errors.New("key not found")

// Store reads and writes opaque blobs under fixed keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}
