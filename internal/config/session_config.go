package config

import "time"

const (
	SessionBackendFile   = "file"
	SessionBackendSQLite = "sqlite"
)

type SessionConfig interface {
	GetIdleTimeout() time.Duration
	GetSessionStorageKey() string
	GetSessionBackend() string
	GetSessionSecret() string
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetIdleTimeout() time.Duration {
	return GetEnvDuration("RXADMIN_IDLE_TIMEOUT", 15*time.Minute)
}

func (Session) GetSessionStorageKey() string {
	return "auth-storage"
}

func (Session) GetSessionBackend() string {
	switch backend := GetEnv("RXADMIN_SESSION_BACKEND", SessionBackendFile); backend {
	case SessionBackendSQLite:
		return backend
	default:
		return SessionBackendFile
	}
}

// GetSessionSecret seals the persisted session when set. Empty means plaintext JSON.
func (Session) GetSessionSecret() string {
	return GetEnv("RXADMIN_SESSION_SECRET", "")
}
