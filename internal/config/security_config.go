package config

import "time"

type SecurityConfig interface {
	GetJWTSecret() string
	GetTokenExpiry() time.Duration
	GetAPIUsers() string
	GetBrowserCookieMaxAge() time.Duration
	GetRateLimit() float64
	GetRateBurst() int
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetJWTSecret signs the login API tokens. The development default must be
// replaced outside DEV.
func (Security) GetJWTSecret() string {
	return GetEnv("JWT_SECRET", "dev-secret-change-me")
}

func (Security) GetTokenExpiry() time.Duration {
	return GetEnvDuration("TOKEN_EXPIRY", 1*time.Hour)
}

// GetAPIUsers is the "user:pass,..." credential table of the login API.
func (Security) GetAPIUsers() string {
	return GetEnv("API_USERS", "")
}

// GetBrowserCookieMaxAge is the lifetime of the cookie naming the durable store.
func (Security) GetBrowserCookieMaxAge() time.Duration {
	return GetEnvDuration("BROWSER_COOKIE_MAX_AGE", 365*24*time.Hour)
}

// GetRateLimit is the sustained requests per second allowed per client on the
// login and API routes.
func (Security) GetRateLimit() float64 {
	return float64(GetEnvInt("RATE_LIMIT", 5))
}

func (Security) GetRateBurst() int {
	return GetEnvInt("RATE_BURST", 10)
}
