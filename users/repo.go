package users

import "context"

// Registry is the account registry used by the login flow.
type Registry interface {
	// Register adds an account; ErrDuplicateAccount if the username or email is taken
	Register(ctx context.Context, username, email, password string) error

	// FindByCredential returns the account whose username or email equals
	// identifier and whose password matches; ErrInvalidCredential otherwise
	FindByCredential(ctx context.Context, identifier, password string) (Account, error)
}
