package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("foxbit")

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "foxbit", cfg.Exchange)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 300, cfg.RateLimitWeight)
	assert.Equal(t, 10*time.Second, cfg.RateLimitPeriod)
}

func TestConfigValidateRejectsMissingExchange(t *testing.T) {
	cfg := DefaultConfig("")
	assert.Error(t, cfg.Validate())
}

func TestConfigChaining(t *testing.T) {
	cfg := DefaultConfig("foxbit").
		WithCredentials(&Credentials{APIKey: "k", SecretKey: "s"}).
		WithTimeout(5 * time.Second).
		WithRateLimit(120, time.Minute)

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "k", cfg.Credentials.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 120, cfg.RateLimitWeight)
	assert.Equal(t, time.Minute, cfg.RateLimitPeriod)
}
