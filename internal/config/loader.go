package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	return LoadWith(viper.New())
}

// LoadWith loads configuration using the given viper instance, which lets
// callers pre-seed values (flags, tests) before env and file lookup.
func LoadWith(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/registry-metadata")

	// Ignore error if config file not found
	_ = v.ReadInConfig()

	var cfg Config

	// Server
	cfg.Server.Host = v.GetString("server_host")
	cfg.Server.Port = v.GetInt("server_port")
	cfg.Server.Env = v.GetString("server_env")

	// Registry
	cfg.Registry.Endpoint = v.GetString("registry_endpoint")
	cfg.Registry.Timeout = v.GetDuration("registry_timeout")
	cfg.Registry.UserAgent = v.GetString("registry_user_agent")

	// Cache
	cfg.Cache.Enabled = v.GetBool("cache_enabled")
	cfg.Cache.Host = v.GetString("redis_host")
	cfg.Cache.Port = v.GetInt("redis_port")
	cfg.Cache.Password = v.GetString("redis_password")
	cfg.Cache.DB = v.GetInt("redis_db")
	cfg.Cache.TTL = v.GetDuration("cache_ttl")
	cfg.Cache.Prefix = v.GetString("cache_prefix")

	// Circuit breaker
	cfg.CircuitBreaker.MaxFailures = v.GetInt("circuit_breaker_max_failures")
	cfg.CircuitBreaker.Timeout = v.GetDuration("circuit_breaker_timeout")

	// Rate limit
	cfg.RateLimit.Enabled = v.GetBool("ratelimit_enabled")
	cfg.RateLimit.Max = v.GetInt("ratelimit_max")
	cfg.RateLimit.Window = v.GetDuration("ratelimit_window")

	// CORS
	cfg.CORS.AllowOrigins = v.GetStringSlice("cors_allow_origins")

	// Logging
	cfg.Log.Level = v.GetString("log_level")
	cfg.Log.Format = v.GetString("log_format")

	// Sentry
	cfg.Sentry.Enabled = v.GetBool("sentry_enabled")
	cfg.Sentry.DSN = v.GetString("sentry_dsn")
	cfg.Sentry.Environment = v.GetString("sentry_environment")
	cfg.Sentry.Release = v.GetString("sentry_release")
	cfg.Sentry.SampleRate = v.GetFloat64("sentry_sample_rate")
	cfg.Sentry.TracesSampleRate = v.GetFloat64("sentry_traces_sample_rate")

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("server_port", 8080)
	v.SetDefault("server_env", "development")

	// Registry defaults
	v.SetDefault("registry_endpoint", DefaultRegistryEndpoint)
	v.SetDefault("registry_timeout", "15s")
	v.SetDefault("registry_user_agent", "covidtimeseries-metadata/0.1")

	// Cache defaults
	v.SetDefault("cache_enabled", false)
	v.SetDefault("redis_host", "localhost")
	v.SetDefault("redis_port", 6379)
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("cache_ttl", "10m")
	v.SetDefault("cache_prefix", "registry:")

	// Circuit breaker defaults
	v.SetDefault("circuit_breaker_max_failures", 5)
	v.SetDefault("circuit_breaker_timeout", "30s")

	// Rate limit defaults
	v.SetDefault("ratelimit_enabled", false)
	v.SetDefault("ratelimit_max", 120)
	v.SetDefault("ratelimit_window", "1m")

	// CORS defaults
	v.SetDefault("cors_allow_origins", []string{"*"})

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	// Sentry defaults
	v.SetDefault("sentry_enabled", false)
	v.SetDefault("sentry_sample_rate", 1.0)
	v.SetDefault("sentry_traces_sample_rate", 0.1)
}

func validate(cfg *Config) error {
	u, err := url.Parse(cfg.Registry.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("registry endpoint %q is not an absolute URL", cfg.Registry.Endpoint)
	}
	if cfg.Registry.Timeout <= 0 {
		return fmt.Errorf("registry timeout must be positive")
	}
	if cfg.Cache.Enabled && cfg.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive when the cache is enabled")
	}
	if cfg.RateLimit.Enabled {
		if !cfg.Cache.Enabled {
			return fmt.Errorf("rate limiting requires the redis cache to be enabled")
		}
		if cfg.RateLimit.Max <= 0 || cfg.RateLimit.Window <= 0 {
			return fmt.Errorf("rate limit max and window must be positive")
		}
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", cfg.Server.Port)
	}
	return nil
}
