package alakazam

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds configuration options for the service.
type Config struct {
	// DBPath is the SQLite database file used when no other store is
	// configured. Default: "alakazam.sqlite3"
	DBPath string `yaml:"db_path"`

	// RedisAddr selects the Redis store when non-empty, e.g. "localhost:6379".
	RedisAddr string `yaml:"redis_addr"`

	// RedisPassword authenticates the Redis connection (optional).
	RedisPassword string `yaml:"redis_password"`

	// TempDir holds intermediate files from audio conversion. Default: /tmp
	TempDir string `yaml:"temp_dir"`

	// PerSampleWindow switches spectral analysis from the uniform-gain taper
	// to a true per-sample Hamming window. Fingerprints generated with the
	// two settings are incompatible.
	PerSampleWindow bool `yaml:"per_sample_window"`

	// Logger overrides the default logger.
	Logger Logger `yaml:"-"`

	// Store overrides the backend selection above entirely.
	Store Store `yaml:"-"`
}

// Option is a functional option for configuring the service.
type Option func(*Config)

func WithDBPath(path string) Option {
	return func(c *Config) { c.DBPath = path }
}

func WithRedisAddr(addr, password string) Option {
	return func(c *Config) {
		c.RedisAddr = addr
		c.RedisPassword = password
	}
}

func WithTempDir(dir string) Option {
	return func(c *Config) { c.TempDir = dir }
}

func WithPerSampleWindow(enabled bool) Option {
	return func(c *Config) { c.PerSampleWindow = enabled }
}

func WithLogger(log Logger) Option {
	return func(c *Config) { c.Logger = log }
}

func WithStore(store Store) Option {
	return func(c *Config) { c.Store = store }
}

// WithConfig replaces the whole base configuration, typically one produced
// by LoadConfig or ConfigFromEnv. Later options still apply on top.
func WithConfig(cfg *Config) Option {
	return func(c *Config) { *c = *cfg }
}

func defaultConfig() *Config {
	return &Config{
		DBPath:  "alakazam.sqlite3",
		TempDir: "/tmp",
	}
}

// LoadConfig reads a YAML configuration file on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// ConfigFromEnv builds a configuration from environment variables, loading a
// .env file first when one is present. Recognised variables:
// ALAKAZAM_DB_PATH, ALAKAZAM_REDIS_ADDR, ALAKAZAM_REDIS_PASSWORD,
// ALAKAZAM_TEMP_DIR.
func ConfigFromEnv() *Config {
	_ = godotenv.Load()

	cfg := defaultConfig()
	if v := os.Getenv("ALAKAZAM_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("ALAKAZAM_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("ALAKAZAM_REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("ALAKAZAM_TEMP_DIR"); v != "" {
		cfg.TempDir = v
	}
	return cfg
}
