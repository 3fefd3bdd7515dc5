package config

import "time"

type Config interface {
	EnvConfig
	GatewayConfig
	GuardConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetStorageFolder() string
}

type GatewayConfig interface {
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
}

type GuardConfig interface {
	GetLoginPath() string
	GetDefaultPage() string
	GetPermissionBypass() bool
	GetGuardBypass() bool
}

type mainConfig struct {
	EnvVars
	Gateway
	Guard
}

func New() Config {
	return mainConfig{}
}
