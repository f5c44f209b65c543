package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	maxTimeout     = 30 * time.Minute
	maxConcurrency = 100
)

// ValidateTimeout requires 0 < timeout <= 30m
func ValidateTimeout(timeout time.Duration, name string) error {
	switch {
	case timeout <= 0:
		return fmt.Errorf("%s timeout must be positive, got %s", name, timeout)
	case timeout > maxTimeout:
		return fmt.Errorf("%s timeout %s exceeds %s", name, timeout, maxTimeout)
	}
	return nil
}

// ValidateConcurrency requires 1..100 workers
func ValidateConcurrency(concurrency int, name string) error {
	if concurrency < 1 || concurrency > maxConcurrency {
		return fmt.Errorf("%s concurrency must be between 1 and %d, got %d", name, maxConcurrency, concurrency)
	}
	return nil
}

// ValidateAPIKey checks the shape of a provider key. OpenAI keys start with "sk-".
func ValidateAPIKey(apiKey string, provider string) error {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return fmt.Errorf("%s API key is required", provider)
	}
	if provider == "OpenAI" && (!strings.HasPrefix(key, "sk-") || len(key) < 20) {
		return fmt.Errorf("%s API key is malformed", provider)
	}
	return nil
}

// ValidateURL requires an absolute http(s) URL with a host
func ValidateURL(raw string, name string) error {
	if raw == "" {
		return fmt.Errorf("%s URL is required", name)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s URL %q is not an absolute http(s) URL", name, raw)
	}
	return nil
}

// ValidatePort requires a TCP port number
func ValidatePort(port string, name string) error {
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("%s port %q is not a valid TCP port", name, port)
	}
	return nil
}
