package config

import (
	"time"
)

const (
	apiBaseURLVar     = "API_BASE_URL"
	requestTimeoutVar = "REQUEST_TIMEOUT"

	defaultRequestTimeout = 30 * time.Second
)

type Gateway struct{}

var _ GatewayConfig = Gateway{}

// GetAPIBaseURL returns the base URL of the backend API (e.g. "https://api.example.com").
// All auth endpoints are resolved relative to it.
func (Gateway) GetAPIBaseURL() string {
	return GetEnv(apiBaseURLVar, "http://localhost:8080")
}

// GetRequestTimeout returns the fixed timeout applied to every outgoing request.
func (Gateway) GetRequestTimeout() time.Duration {
	raw := GetEnv(requestTimeoutVar, "")
	if raw == "" {
		return defaultRequestTimeout
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return defaultRequestTimeout
	}
	return d
}
