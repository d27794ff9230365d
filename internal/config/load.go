package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. PREP_SERVER_PORT.
const EnvPrefix = "PREP"

var defaults = map[string]any{
	"server.port":                         8080,
	"server.log_level":                    "info",
	"server.shutdown_timeout_seconds":     15,
	"server.allowed_origins":              []string{"http://localhost:3000"},
	"database.url":                        "",
	"database.max_open_conns":             25,
	"database.max_idle_conns":             5,
	"database.conn_max_lifetime_minutes":  5,
	"auth.jwt_secret":                     "",
	"auth.token_lifetime_minutes":         60,
	"auth.refresh_token_lifetime_minutes": 10080,
	"auth.bcrypt_cost":                    10,
	"llm.gemini_api_key":                  "",
	"llm.model_name":                      "gemini-2.0-flash",
	"llm.max_retries":                     3,
	"llm.retry_delay_seconds":             2,
	"llm.timeout_seconds":                 60,
	"llm.question_count":                  10,
	"oauth.google.client_id":              "",
	"oauth.google.client_secret":          "",
	"oauth.google.redirect_url":           "",
	"oauth.google.frontend_url":           "http://localhost:3000",
	"cache.redis_addr":                    "",
	"cache.redis_password":                "",
	"cache.redis_db":                      0,
	"cache.ttl_seconds":                   300,
}

// Load reads configuration from an optional .env file, an optional
// config.yaml in the working directory and PREP_* environment variables,
// in increasing order of precedence, then validates the result.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile behaves like Load but reads the config file at path, which must
// exist. An empty path falls back to the optional config.yaml lookup.
func LoadFile(path string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
