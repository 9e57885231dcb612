package auth

import (
	"strings"

	apperrors "github.com/shanebasham/artstore/internal/errors"
)

// APIUsers is the fixed credential table of the login API, username to password.
type APIUsers map[string]string

// ParseAPIUsers reads "user:pass,user2:pass2". Malformed entries are skipped.
func ParseAPIUsers(s string) APIUsers {
	users := APIUsers{}
	for _, entry := range strings.Split(s, ",") {
		name, password, ok := strings.Cut(strings.TrimSpace(entry), ":")
		if !ok || name == "" || password == "" {
			continue
		}
		users[name] = password
	}
	return users
}

// Check returns ErrMissingField for a blank username or password and
// ErrInvalidCredential when the pair is not in the table.
func (u APIUsers) Check(username, password string) error {
	if username == "" || password == "" {
		return apperrors.ErrMissingField
	}
	valid, ok := u[username]
	if !ok || valid != password {
		return apperrors.ErrInvalidCredential
	}
	return nil
}
