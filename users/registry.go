package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "github.com/shanebasham/artstore/internal/errors"
	"github.com/shanebasham/artstore/kvstore"
)

// KeyUsers is the store key holding the serialized account list.
const KeyUsers = "users"

var _ Registry = (*StoreRegistry)(nil)

// StoreRegistry persists the whole account list as one JSON array in a
// key-value store. Every mutation rewrites the full list.
type StoreRegistry struct {
	store kvstore.Store
}

func NewStoreRegistry(store kvstore.Store) *StoreRegistry {
	return &StoreRegistry{store: store}
}

func (r *StoreRegistry) Register(ctx context.Context, username, email, password string) error {
	accounts, err := r.List(ctx)
	if err != nil {
		return err
	}

	account := Account{Username: username, Email: email, Password: password}
	for _, existing := range accounts {
		if existing.conflicts(account) {
			return apperrors.ErrDuplicateAccount
		}
	}

	return r.save(ctx, append(accounts, account))
}

func (r *StoreRegistry) FindByCredential(ctx context.Context, identifier, password string) (Account, error) {
	accounts, err := r.List(ctx)
	if err != nil {
		return Account{}, err
	}
	for _, account := range accounts {
		if account.matches(identifier, password) {
			return account, nil
		}
	}
	return Account{}, apperrors.ErrInvalidCredential
}

// List returns every registered account in registration order.
func (r *StoreRegistry) List(ctx context.Context) ([]Account, error) {
	raw, err := r.store.Get(ctx, KeyUsers)
	if errors.Is(err, kvstore.ErrNotFound) {
		return []Account{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}

	var accounts []Account
	if err := json.Unmarshal([]byte(raw), &accounts); err != nil {
		return nil, fmt.Errorf("decode accounts: %w: %v", apperrors.ErrMalformedResponse, err)
	}
	return accounts, nil
}

func (r *StoreRegistry) save(ctx context.Context, accounts []Account) error {
	data, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("encode accounts: %w", err)
	}
	if err := r.store.Set(ctx, KeyUsers, string(data)); err != nil {
		return fmt.Errorf("store accounts: %w", err)
	}
	return nil
}
