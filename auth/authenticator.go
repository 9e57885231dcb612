package auth

import (
	"context"
	"strings"

	"github.com/shanebasham/artstore/users"
)

// LocalToken is the opaque token stored for accounts checked against the
// local registry.
const LocalToken = "demo-token"

// Result is a successful credential check.
type Result struct {
	Token       string
	DisplayName string
}

// Authenticator checks a login identifier (username or email) and password.
type Authenticator interface {
	Authenticate(ctx context.Context, identifier, password string) (Result, error)
}

// LocalAuthenticator checks credentials against the account registry.
type LocalAuthenticator struct {
	registry users.Registry
}

var _ Authenticator = (*LocalAuthenticator)(nil)

func NewLocalAuthenticator(registry users.Registry) *LocalAuthenticator {
	return &LocalAuthenticator{registry: registry}
}

func (a *LocalAuthenticator) Authenticate(ctx context.Context, identifier, password string) (Result, error) {
	account, err := a.registry.FindByCredential(ctx, strings.TrimSpace(identifier), strings.TrimSpace(password))
	if err != nil {
		return Result{}, err
	}
	return Result{Token: LocalToken, DisplayName: account.DisplayName()}, nil
}
