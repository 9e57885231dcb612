// Package kvstore defines the key-value capability that stands in for the
// browser's durable and per-tab storage.
package kvstore

import (
	"context"

	apperrors "github.com/shanebasham/artstore/internal/errors"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = apperrors.ErrNotFound

// Store is the {get, set, remove} capability shared by every backend.
type Store interface {
	// Get returns the value stored under key or ErrNotFound
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// Scoped namespaces every key of an underlying store with a prefix, so that one
// backend can hold the storage of many browsing contexts.
type Scoped struct {
	store  Store
	prefix string
}

var _ Store = (*Scoped)(nil)

func NewScoped(store Store, scope string) *Scoped {
	return &Scoped{store: store, prefix: scope + ":"}
}

func (s *Scoped) Get(ctx context.Context, key string) (string, error) {
	return s.store.Get(ctx, s.prefix+key)
}

func (s *Scoped) Set(ctx context.Context, key, value string) error {
	return s.store.Set(ctx, s.prefix+key, value)
}

func (s *Scoped) Remove(ctx context.Context, key string) error {
	return s.store.Remove(ctx, s.prefix+key)
}
