package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gramctl-io/gramctl/internal/sessions"
)

func TestLoad_Defaults(t *testing.T) {
	// Run out of an empty directory so no stray config.yaml interferes.
	t.Chdir(t.TempDir())

	config, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, sessions.DefaultStorePath, config.Session.Path)
	assert.Equal(t, 30*time.Second, config.API.Timeout)
	assert.Equal(t, 5, config.Retry.MaxAttempts)
	assert.Equal(t, time.Second, config.Retry.BaseWait)
	assert.Equal(t, 5*time.Second, config.Retry.RateLimitWait)
	assert.Equal(t, 60*time.Second, config.Retry.MaxWait)
	assert.Equal(t, 1.0, config.Throttle.Rate)
	assert.Equal(t, 3, config.Throttle.Burst)
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "text", config.Logging.Format)
}

func TestLoad_SessionFileEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GRAMCTL_SESSION_FILE", "/tmp/custom-session.yaml")

	config, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom-session.yaml", config.Session.Path)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	content := `
session:
  path: /var/lib/gramctl/session.yaml
retry:
  max_attempts: 2
  rate_limit_wait: 30s
logging:
  level: debug
  format: json
`
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	config, err := Load(file)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/gramctl/session.yaml", config.Session.Path)
	assert.Equal(t, 2, config.Retry.MaxAttempts)
	assert.Equal(t, 30*time.Second, config.Retry.RateLimitWait)
	assert.Equal(t, "debug", config.Logging.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, time.Second, config.Retry.BaseWait)
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GRAMCTL_RETRY_MAX_ATTEMPTS", "0")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoad_InvalidLogLevelRejected(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GRAMCTL_LOGGING_LEVEL", "chatty")

	_, err := Load("")
	require.Error(t, err)
}

func TestConfig_RetryPolicyProjection(t *testing.T) {
	t.Chdir(t.TempDir())

	config, err := Load("")
	require.NoError(t, err)

	policy := config.RetryPolicy()
	assert.Equal(t, config.Retry.MaxAttempts, policy.MaxAttempts)
	assert.Equal(t, config.Retry.BaseWait, policy.BaseWait)
	assert.Equal(t, config.Retry.RateLimitWait, policy.RateLimitWait)
	assert.Equal(t, config.Retry.MaxWait, policy.MaxWait)
}
