package core

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Credentials holds the API key pair used to sign private requests.
// Public and status endpoints require neither field.
type Credentials struct {
	// APIKey is the public API key identifier.
	APIKey string `json:"api_key"`
	// SecretKey is the private key used for HMAC signing.
	SecretKey string `json:"secret_key"`
}

// Config contains all configuration for one exchange session. The route
// table, hosts and rate weights are owned by the venue protocol; Config
// only parameterizes transport behavior and authentication.
type Config struct {
	Exchange    string       `json:"exchange" validate:"required"`
	Credentials *Credentials `json:"credentials,omitempty"`

	// Timeout is the maximum duration for a single HTTP request.
	Timeout      time.Duration `json:"timeout" validate:"min=1ms"`
	MaxRetries   int           `json:"max_retries" validate:"min=0"`
	RetryWaitMin time.Duration `json:"retry_wait_min" validate:"min=0"`
	RetryWaitMax time.Duration `json:"retry_wait_max" validate:"min=0"`

	// RateLimitWeight is the weight budget per RateLimitPeriod. Each route
	// consumes its declared weight from this budget.
	RateLimitWeight int           `json:"rate_limit_weight" validate:"min=1"`
	RateLimitPeriod time.Duration `json:"rate_limit_period" validate:"min=1ms"`

	LogLevel string `json:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// DefaultConfig returns a Config with the venue's documented limits:
// 10s timeout and a 300-weight budget per 10 seconds.
func DefaultConfig(exchange string) *Config {
	return &Config{
		Exchange:     exchange,
		Timeout:      10 * time.Second,
		MaxRetries:   0,
		RetryWaitMin: 100 * time.Millisecond,
		RetryWaitMax: 1 * time.Second,

		RateLimitWeight: 300,
		RateLimitPeriod: 10 * time.Second,

		LogLevel: "info",
	}
}

var validate = validator.New()

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// WithCredentials sets the API credentials and returns the config for chaining.
func (c *Config) WithCredentials(creds *Credentials) *Config {
	c.Credentials = creds
	return c
}

// WithTimeout sets the request timeout and returns the config for chaining.
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.Timeout = timeout
	return c
}

// WithRateLimit sets the weight budget per period and returns the config
// for chaining.
func (c *Config) WithRateLimit(weight int, period time.Duration) *Config {
	c.RateLimitWeight = weight
	c.RateLimitPeriod = period
	return c
}
