package users

// Account is a locally registered shopper account.
//
// Passwords are stored and compared in cleartext, exactly as the storefront
// always has. This must not reach a real deployment without hashing.
type Account struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// DisplayName is the name shown after login: the username, or the email for
// accounts that were stored without one.
func (a Account) DisplayName() string {
	if a.Username != "" {
		return a.Username
	}
	return a.Email
}

// conflicts reports whether other shares a username or an email with a.
func (a Account) conflicts(other Account) bool {
	return a.Username == other.Username || a.Email == other.Email
}

// matches reports whether identifier names the account (by username or email)
// and password is its password.
func (a Account) matches(identifier, password string) bool {
	return (a.Username == identifier || a.Email == identifier) && a.Password == password
}
