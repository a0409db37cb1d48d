package config

import "time"

type Config interface {
	EnvConfig
	APIConfig
	RetryConfig
}

type EnvConfig interface {
	GetAppName() string
	GetDataFolder() string
	GetEnv() string
}

type APIConfig interface {
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
}

// RetryConfig configures the admin list view's fetch retry policy. The policy
// is local to that one view, not a transport-level concern.
type RetryConfig interface {
	GetListRetries() int
	GetListRetryDelay() time.Duration
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
