package auth

import (
	"regexp"
	"strings"

	apperrors "github.com/shanebasham/artstore/internal/errors"
)

// Form field names reported by ValidateRegistration.
const (
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
)

const (
	minUsernameLength = 3
	minPasswordLength = 6
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Registration holds the fields of the create-account form.
type Registration struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Normalize trims the username and email. Passwords are kept as typed.
func (r Registration) Normalize() Registration {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	return r
}

// ValidateRegistration checks the form in display order and returns the first
// failure as a *errors.ValidationError.
func ValidateRegistration(r Registration) error {
	r = r.Normalize()

	if len(r.Username) < minUsernameLength {
		return apperrors.NewValidationError(FieldUsername, "Please enter a username (at least 3 characters).")
	}
	if !ValidEmail(r.Email) {
		return apperrors.NewValidationError(FieldEmail, "Please enter a valid email.")
	}
	if len(r.Password) < minPasswordLength {
		return apperrors.NewValidationError(FieldPassword, "Password must be at least 6 characters.")
	}
	if r.Password != r.ConfirmPassword {
		return apperrors.NewValidationError(FieldConfirmPassword, "Passwords do not match.")
	}
	return nil
}

// ValidEmail reports whether email looks like local@domain.tld.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
