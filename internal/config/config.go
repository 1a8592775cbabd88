package config

import "time"

type Config interface {
	EnvConfig
	OAuthConfig
}

type EnvConfig interface {
	GetAppName() string
	GetLogLevel() string
	GetFixturesFile() string
	GetTickInterval() time.Duration
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	OAuth
}

func New() Config {
	return mainConfig{}
}
