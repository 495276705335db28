// Package config provides client configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Credential store kinds accepted by CREDENTIAL_STORE.
const (
	CredentialStoreFile   = "file"
	CredentialStoreRedis  = "redis"
	CredentialStoreSQL    = "sql"
	CredentialStoreMemory = "memory"
)

// Config holds client configuration values loaded from file or environment variables.
type Config struct {
	// APIBaseURL is prefixed to every request path. Empty means relative
	// same-origin paths, which only make sense behind a proxy.
	APIBaseURL         string `mapstructure:"API_BASE_URL"`
	Env                string `mapstructure:"APP_ENV"`
	HTTPTimeoutSeconds int    `mapstructure:"HTTP_TIMEOUT_SECONDS"`
	CredentialStore    string `mapstructure:"CREDENTIAL_STORE"`
	CredentialPath     string `mapstructure:"CREDENTIAL_PATH"`
	CredentialDSN      string `mapstructure:"CREDENTIAL_DSN"`
	RedisURL           string `mapstructure:"REDIS_URL"`
	LogLevel           string `mapstructure:"LOG_LEVEL"`
	LogFormat          string `mapstructure:"LOG_FORMAT"`
	TracingEnabled     bool   `mapstructure:"TRACING_ENABLED"`
	TracingExporter    string `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint       string `mapstructure:"OTLP_ENDPOINT"`
	FakeAPIPort        string `mapstructure:"FAKEAPI_PORT"`
	FakeAPIJWTSecret   string `mapstructure:"FAKEAPI_JWT_SECRET"`
	FakeAPISeedUsers   int    `mapstructure:"FAKEAPI_SEED_USERS"`
}

// LoadConfig loads configuration from an optional .env file, config files and
// environment variables, in increasing order of precedence.
func LoadConfig() (*Config, error) {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("$HOME/.writex")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read profile config 'config.%s.yml': %w", env, err)
			}
		} else {
			log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
		}
	}

	viper.SetDefault("API_BASE_URL", "")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("HTTP_TIMEOUT_SECONDS", 15)
	viper.SetDefault("CREDENTIAL_STORE", CredentialStoreFile)
	viper.SetDefault("CREDENTIAL_PATH", "")
	viper.SetDefault("CREDENTIAL_DSN", "")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("FAKEAPI_PORT", "5000")
	viper.SetDefault("FAKEAPI_JWT_SECRET", "writex-fakeapi-development-secret")
	viper.SetDefault("FAKEAPI_SEED_USERS", 0)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.APIBaseURL = strings.TrimRight(strings.TrimSpace(config.APIBaseURL), "/")
	config.CredentialStore = strings.ToLower(strings.TrimSpace(config.CredentialStore))

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that configuration values are usable.
func (c *Config) Validate() error {
	if c.HTTPTimeoutSeconds <= 0 {
		return errors.New("HTTP_TIMEOUT_SECONDS must be positive")
	}

	switch c.CredentialStore {
	case CredentialStoreFile, CredentialStoreMemory:
	case CredentialStoreRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required when CREDENTIAL_STORE is redis")
		}
	case CredentialStoreSQL:
		if c.CredentialDSN == "" {
			return errors.New("CREDENTIAL_DSN is required when CREDENTIAL_STORE is sql")
		}
	default:
		return fmt.Errorf("unknown CREDENTIAL_STORE %q", c.CredentialStore)
	}

	if c.APIBaseURL != "" && !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("API_BASE_URL must be an http(s) URL, got %q", c.APIBaseURL)
	}

	if c.IsProduction() && strings.HasPrefix(c.APIBaseURL, "http://") {
		log.Println("WARNING: API_BASE_URL uses plain http in production. Credentials will travel unencrypted.")
	}

	return nil
}

// IsProduction reports whether the profile is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// HTTPTimeout returns the per-request timeout.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}
