package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	appNameVar    = "APP_NAME"
	apiURLVar     = "API_URL"
	folderEnvVar  = "FOLDER"
	timeoutVar    = "REQUEST_TIMEOUT_SECONDS"
	retriesVar    = "LIST_RETRIES"
	retryDelayVar = "LIST_RETRY_DELAY_SECONDS"

	// Fallback endpoint used when API_URL is not set.
	defaultAPIBaseURL = "https://clientfeedbackportal-backend.onrender.com"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Feedback Portal")
}

func (EnvVars) GetAPIBaseURL() string {
	return GetEnv(apiURLVar, defaultAPIBaseURL)
}

func (EnvVars) GetDataFolder() string {
	if folder := os.Getenv(folderEnvVar); folder != "" {
		return folder
	}
	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "feedback-portal")
	}
	return "./data"
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func (EnvVars) GetRequestTimeout() time.Duration {
	return time.Duration(getEnvInt(timeoutVar, 30)) * time.Second
}

func (EnvVars) GetListRetries() int {
	return getEnvInt(retriesVar, 3)
}

func (EnvVars) GetListRetryDelay() time.Duration {
	return time.Duration(getEnvInt(retryDelayVar, 2)) * time.Second
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(envVar string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(envVar))
	if err != nil || value < 0 {
		return defaultValue
	}
	return value
}
