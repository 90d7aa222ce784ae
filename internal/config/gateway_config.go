package config

import "time"

type GatewayConfig interface {
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
}

type Gateway struct{}

var _ GatewayConfig = Gateway{}

// GetAPIBaseURL returns the admin API root every request path is appended to
func (Gateway) GetAPIBaseURL() string {
	return GetEnv("RXADMIN_API_URL", "http://localhost:3030/dev")
}

func (Gateway) GetRequestTimeout() time.Duration {
	return GetEnvDuration("RXADMIN_REQUEST_TIMEOUT", 30*time.Second)
}
