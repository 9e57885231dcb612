package config

import (
	"strings"
	"time"
)

const (
	AuthModeLocal  = "local"
	AuthModeRemote = "remote"
)

type LoginConfig interface {
	GetAuthMode() string
	GetLoginAPIURL() string
	GetLoginTimeout() time.Duration
}

type Login struct{}

var _ LoginConfig = Login{}

// GetAuthMode selects the credential check of the login modal: the local
// account registry or the remote login API.
func (Login) GetAuthMode() string {
	if strings.EqualFold(GetEnv("AUTH_MODE", AuthModeLocal), AuthModeRemote) {
		return AuthModeRemote
	}
	return AuthModeLocal
}

func (Login) GetLoginAPIURL() string {
	return GetEnv("LOGIN_API_URL", "http://localhost:3000/api/login")
}

func (Login) GetLoginTimeout() time.Duration {
	return GetEnvDuration("LOGIN_TIMEOUT", 10*time.Second)
}
