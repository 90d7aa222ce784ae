package config

type Config interface {
	EnvConfig
	GatewayConfig
	SessionConfig
	MockAPIConfig
	CorsConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetDataFolder() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Gateway
	Session
	MockAPI
	Cors
}

func New() Config {
	return mainConfig{}
}
