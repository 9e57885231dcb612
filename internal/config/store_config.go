package config

import (
	"path/filepath"
	"strings"
	"time"
)

const (
	StoreBackendSQLite = "sqlite"
	StoreBackendRedis  = "redis"
)

type StoreConfig interface {
	GetStoreBackend() string
	GetSQLitePath() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetDurableTTL() time.Duration
	GetEphemeralTTL() time.Duration
}

type Stores struct{}

var _ StoreConfig = Stores{}

// GetStoreBackend selects where durable (remember-me) browser data is kept.
func (Stores) GetStoreBackend() string {
	if strings.EqualFold(GetEnv("STORE_BACKEND", StoreBackendSQLite), StoreBackendRedis) {
		return StoreBackendRedis
	}
	return StoreBackendSQLite
}

func (Stores) GetSQLitePath() string {
	return GetEnv("SQLITE_PATH", filepath.Join(EnvVars{}.GetDataFolder(), "artstore.db"))
}

func (Stores) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Stores) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

// GetDurableTTL expires durable entries in Redis; zero keeps them forever.
func (Stores) GetDurableTTL() time.Duration {
	return GetEnvDuration("DURABLE_TTL", 0)
}

// GetEphemeralTTL drops per-tab entries left idle for this long.
func (Stores) GetEphemeralTTL() time.Duration {
	return GetEnvDuration("EPHEMERAL_TTL", 24*time.Hour)
}
