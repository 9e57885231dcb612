package sessions

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/shanebasham/artstore/internal/errors"
	"github.com/shanebasham/artstore/kvstore"
)

// Storage keys shared with the browser-side scripts.
const (
	KeyAuthToken = "authToken"
	KeyUsername  = "username"
)

// Session is the login state of one browsing context.
type Session struct {
	Token       string // Auth token returned by the credential check
	DisplayName string // Name shown in the header ("Welcome, ...")
}

// Store keeps the session in one of two key-value stores: the durable store
// when the user ticked "remember me", the ephemeral (per-tab) store otherwise.
type Store struct {
	durable   kvstore.Store
	ephemeral kvstore.Store
}

func NewStore(durable, ephemeral kvstore.Store) *Store {
	return &Store{
		durable:   durable,
		ephemeral: ephemeral,
	}
}

// Save writes the session into the durable store when remember is true and into
// the ephemeral store otherwise. The other store is left untouched, so a session
// saved earlier with the opposite preference survives until Clear.
func (s *Store) Save(ctx context.Context, token, displayName string, remember bool) error {
	target := s.ephemeral
	if remember {
		target = s.durable
	}
	if err := target.Set(ctx, KeyAuthToken, token); err != nil {
		return fmt.Errorf("save session token: %w", err)
	}
	if err := target.Set(ctx, KeyUsername, displayName); err != nil {
		return fmt.Errorf("save session name: %w", err)
	}
	return nil
}

// Load returns the durable session if there is one, then the ephemeral one.
// It returns ErrSessionNotFound when neither store holds a token.
func (s *Store) Load(ctx context.Context) (Session, error) {
	for _, store := range []kvstore.Store{s.durable, s.ephemeral} {
		session, err := load(ctx, store)
		if errors.Is(err, kvstore.ErrNotFound) {
			continue
		}
		if err != nil {
			return Session{}, err
		}
		return session, nil
	}
	return Session{}, apperrors.ErrSessionNotFound
}

func load(ctx context.Context, store kvstore.Store) (Session, error) {
	token, err := store.Get(ctx, KeyAuthToken)
	if err != nil {
		return Session{}, err
	}
	if token == "" {
		return Session{}, kvstore.ErrNotFound
	}
	name, err := store.Get(ctx, KeyUsername)
	if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		return Session{}, fmt.Errorf("load session name: %w", err)
	}
	return Session{Token: token, DisplayName: name}, nil
}

// Clear removes the session from both stores regardless of which one holds it.
// It is the logout operation and may be called any number of times.
func (s *Store) Clear(ctx context.Context) error {
	var errs []error
	for _, store := range []kvstore.Store{s.ephemeral, s.durable} {
		for _, key := range []string{KeyAuthToken, KeyUsername} {
			if err := store.Remove(ctx, key); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
