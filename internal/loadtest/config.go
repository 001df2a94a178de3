// Package loadtest drives concurrent analysis traffic against a running
// skillnav server and reports latency statistics.
package loadtest

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Defaults.
const (
	DefaultBaseURL      = "http://localhost:8000"
	DefaultRequests     = 200
	DefaultTimeout      = 30 * time.Second
	DefaultPollInterval = 50 * time.Millisecond
	workerMultiplier    = 2
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid load test config")

// Config holds load test parameters.
type Config struct {
	BaseURL      string        // server root, e.g. http://localhost:8000
	Requests     int           // total operations; even ones are /analyze, odd ones /analyses
	Workers      int           // concurrent in-flight operations
	Timeout      time.Duration // per HTTP request
	PollInterval time.Duration // between job status checks
	Verbose      bool          // log every failure
}

// DefaultConfig returns a Config for a local server.
func DefaultConfig() Config {
	return Config{
		BaseURL:      DefaultBaseURL,
		Requests:     DefaultRequests,
		Workers:      runtime.NumCPU() * workerMultiplier,
		Timeout:      DefaultTimeout,
		PollInterval: DefaultPollInterval,
	}
}

// Validate checks the configuration and trims the base URL.
func (c *Config) Validate() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: url is required", ErrInvalidConfig)
	case c.Requests <= 0:
		return fmt.Errorf("%w: requests must be positive", ErrInvalidConfig)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	case c.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	return nil
}
