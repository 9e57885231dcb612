package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shanebasham/artstore/kvstore"
)

var _ kvstore.Store = (*Store)(nil)

// Store is an in-process key-value store. It backs the ephemeral (per-tab)
// storage and is the fake used by tests. With a TTL, entries not read or
// written for that long are treated as missing and dropped by Sweep.
type Store struct {
	values map[string]entry
	lock   sync.Mutex
	ttl    time.Duration
	now    func() time.Time
}

type entry struct {
	value    string
	lastUsed time.Time
}

type Option func(*Store)

// WithTTL expires entries idle for longer than ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		values: make(map[string]entry),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	e, ok := s.values[key]
	now := s.now()
	if !ok || s.expired(e, now) {
		delete(s.values, key)
		return "", kvstore.ErrNotFound
	}
	e.lastUsed = now
	s.values[key] = e
	return e.value, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.values[key] = entry{value: value, lastUsed: s.now()}
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.values, key)
	return nil
}

// Len returns the number of stored keys, expired ones included until swept
func (s *Store) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.values)
}

// Sweep drops expired entries and returns how many were removed.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	now := s.now()
	removed := 0
	for key, e := range s.values {
		if s.expired(e, now) {
			delete(s.values, key)
			removed++
		}
	}
	return removed
}

func (s *Store) expired(e entry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.lastUsed) > s.ttl
}
