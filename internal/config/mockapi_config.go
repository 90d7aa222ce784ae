package config

import (
	"fmt"
	"time"
)

type MockAPIConfig interface {
	GetPort() string
	GetBasePath() string
	GetSigningSecret() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetRefreshTokenLength() int
	GetSeedCompanies() int
}

type MockAPI struct{}

var _ MockAPIConfig = MockAPI{}

func (MockAPI) GetPort() string {
	port := GetEnv("PORT", "3030")
	if port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

// GetBasePath mirrors the stage prefix of the deployed API ("/dev").
func (MockAPI) GetBasePath() string {
	return GetEnv("RXADMIN_MOCK_BASE_PATH", "/dev")
}

func (MockAPI) GetSigningSecret() string {
	return GetEnv("RXADMIN_MOCK_SIGNING_SECRET", "dev-signing-secret")
}

func (MockAPI) GetAccessTokenExpiry() time.Duration {
	return GetEnvDuration("RXADMIN_MOCK_ACCESS_TTL", 15*time.Minute)
}

func (MockAPI) GetRefreshTokenExpiry() time.Duration {
	return GetEnvDuration("RXADMIN_MOCK_REFRESH_TTL", 7*24*time.Hour)
}

func (MockAPI) GetRefreshTokenLength() int {
	return 32 // 32 bytes = 256 bits
}

func (MockAPI) GetSeedCompanies() int {
	return GetEnvInt("RXADMIN_MOCK_SEED_COMPANIES", 5)
}
