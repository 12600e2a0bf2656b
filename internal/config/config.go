package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/gramctl-io/gramctl/internal/common"
	"github.com/gramctl-io/gramctl/internal/retry"
	"github.com/gramctl-io/gramctl/internal/sessions"
)

// Config is the application configuration, layered from defaults, an
// optional config.yaml and GRAMCTL_* environment variables.
type Config struct {
	Session  SessionConfig  `mapstructure:"session"`
	API      APIConfig      `mapstructure:"api"`
	Retry    RetryConfig    `mapstructure:"retry"`
	Throttle ThrottleConfig `mapstructure:"throttle"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type SessionConfig struct {
	// Path locates the persisted session envelope.
	Path string `mapstructure:"path" validate:"required"`
}

type APIConfig struct {
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
	UserAgent string        `mapstructure:"user_agent"`
}

type RetryConfig struct {
	MaxAttempts   int           `mapstructure:"max_attempts" validate:"gte=1"`
	BaseWait      time.Duration `mapstructure:"base_wait" validate:"gt=0"`
	RateLimitWait time.Duration `mapstructure:"rate_limit_wait" validate:"gt=0"`
	MaxWait       time.Duration `mapstructure:"max_wait" validate:"gt=0"`
}

type ThrottleConfig struct {
	Rate  float64 `mapstructure:"rate" validate:"gt=0"`
	Burst int     `mapstructure:"burst" validate:"gte=1"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// Load reads the configuration from all sources and configures logging.
// An explicit configFile overrides the search paths; an absent config
// file is fine, the defaults and environment carry the day.
func Load(configFile string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	setupViperConfig(v, configFile)
	bindEnvironmentVariables(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := setupLogging(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// loadEnvFile loads .env when present; its absence is not an error.
func loadEnvFile() {
	if err := gotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warnln("Failed to load .env file")
	}
}

func setupViperConfig(v *viper.Viper, configFile string) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/gramctl")

	// Viper does not expand ~, resolve the home config dir ourselves.
	if dir, err := common.ConfigDir(); err == nil {
		v.AddConfigPath(dir)
	}

	if len(configFile) > 0 {
		v.SetConfigFile(configFile)
	}

	setDefaults(v)

	v.SetEnvPrefix("GRAMCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
}

func bindEnvironmentVariables(v *viper.Viper) {
	// The documented session file override.
	v.BindEnv("session.path", "GRAMCTL_SESSION_FILE")

	v.BindEnv("api.timeout", "GRAMCTL_API_TIMEOUT")
	v.BindEnv("retry.max_attempts", "GRAMCTL_RETRY_MAX_ATTEMPTS")
	v.BindEnv("logging.level", "GRAMCTL_LOGGING_LEVEL")
	v.BindEnv("logging.format", "GRAMCTL_LOGGING_FORMAT")
}

// setDefaults sets the conservative, platform-friendly defaults.
func setDefaults(v *viper.Viper) {
	v.SetDefault("session.path", sessions.DefaultStorePath)

	v.SetDefault("api.timeout", "30s")
	v.SetDefault("api.user_agent", "")

	v.SetDefault("retry.max_attempts", 5)
	v.SetDefault("retry.base_wait", "1s")
	v.SetDefault("retry.rate_limit_wait", "5s")
	v.SetDefault("retry.max_wait", "60s")

	v.SetDefault("throttle.rate", 1.0)
	v.SetDefault("throttle.burst", 3)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// setupLogging configures logrus from the logging section.
func setupLogging(config *Config) error {
	level, err := logrus.ParseLevel(config.Logging.Level)
	if err != nil {
		return fmt.Errorf("error parsing log level: %w", err)
	}
	logrus.SetLevel(level)

	switch strings.ToLower(config.Logging.Format) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return nil
}

// RetryPolicy projects the retry section into a policy.
func (c *Config) RetryPolicy() retry.Policy {
	policy := retry.DefaultPolicy()
	policy.MaxAttempts = c.Retry.MaxAttempts
	policy.BaseWait = c.Retry.BaseWait
	policy.RateLimitWait = c.Retry.RateLimitWait
	policy.MaxWait = c.Retry.MaxWait
	return policy
}

// NewThrottle builds the outbound pacing bucket.
func (c *Config) NewThrottle() *retry.Throttle {
	return retry.NewThrottle(c.Throttle.Rate, c.Throttle.Burst)
}
