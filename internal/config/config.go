package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable override,
// e.g. TRIE_SERVER_PORT or TRIE_CLIENT_SERVER_URL.
const EnvPrefix = "TRIE"

// Config holds all configuration for the server and the CLI
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Client    ClientConfig    `mapstructure:"client"`
}

// ServerConfig holds HTTP server related configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig holds logging related configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RateLimitConfig holds the request rate limiter configuration
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// ClientConfig holds configuration for the CLI's connection to the server
type ClientConfig struct {
	ServerURL string        `mapstructure:"server_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// Addr returns the host:port the server listens on
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadConfig loads configuration from defaults, an optional file, environment
// variables and finally any flags that were explicitly set.
func LoadConfig(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// bindFlags binds flags named after config keys with dashes, so
// --server-port overrides server.port and --log-level overrides log.level.
// Flags that do not match a known key are ignored.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	known := make(map[string]struct{})
	for _, key := range v.AllKeys() {
		known[key] = struct{}{}
	}

	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if bindErr != nil {
			return
		}
		key := strings.ReplaceAll(strings.Replace(f.Name, "-", ".", 1), "-", "_")
		if _, ok := known[key]; !ok {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			bindErr = fmt.Errorf("failed to bind flag %s: %w", f.Name, err)
		}
	})
	return bindErr
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "5s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Rate limiting is off unless configured
	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.requests_per_second", 100.0)
	v.SetDefault("ratelimit.burst", 50)

	v.SetDefault("client.server_url", "http://localhost:8080")
	v.SetDefault("client.timeout", "5s")
}

// Validate validates the server side of the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}

	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format %q (want console or json)", c.Log.Format)
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate limit requests_per_second must be positive")
		}
		if c.RateLimit.Burst <= 0 {
			return fmt.Errorf("rate limit burst must be positive")
		}
	}

	return nil
}

// ValidateClient validates the CLI side of the configuration
func (c *Config) ValidateClient() error {
	u, err := url.Parse(c.Client.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid server url %q", c.Client.ServerURL)
	}
	if c.Client.Timeout <= 0 {
		return fmt.Errorf("client timeout must be positive")
	}
	return nil
}

// GetConfigPath returns the first config file found in the default locations,
// or an empty string when there is none.
func GetConfigPath() string {
	// Look for config in the following locations:
	// 1. Current directory
	// 2. ./configs/
	// 3. /etc/trie-server/
	configPaths := []string{
		".",
		"./configs",
		"/etc/trie-server",
	}

	for _, path := range configPaths {
		configPath := filepath.Join(path, "config.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}

	return ""
}
