package config

import (
	"os"
	"time"
)

const (
	appNameVar      = "APP_NAME"
	logLevelVar     = "LOG_LEVEL"
	fixturesFileVar = "FIXTURES_FILE"
	tickIntervalVar = "TICK_INTERVAL"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "OAuth Sim")
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

// GetFixturesFile returns the path of a YAML credentials file. Empty means
// the built-in alice/toy-client fixtures are used.
func (EnvVars) GetFixturesFile() string {
	return GetEnv(fixturesFileVar, "")
}

// GetTickInterval is the cadence of the read-only state observer.
func (EnvVars) GetTickInterval() time.Duration {
	d, err := time.ParseDuration(GetEnv(tickIntervalVar, "500ms"))
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
