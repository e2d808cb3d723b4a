package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the shardagg API configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Workers     []WorkerConfig    `yaml:"workers"`
	Dispatch    DispatchConfig    `yaml:"dispatch"`
	Aggregation AggregationConfig `yaml:"aggregation"`
	Cache       CacheConfig       `yaml:"cache"`
	Auth        AuthConfig        `yaml:"auth"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// WorkerConfig addresses one shard worker.
type WorkerConfig struct {
	ID  uint32 `yaml:"id"`
	URL string `yaml:"url"`
}

// DispatchConfig holds worker fan-out settings.
type DispatchConfig struct {
	CallTimeoutMs  int `yaml:"call_timeout_ms"`
	MaxConcurrency int `yaml:"max_concurrency"` // 0 = one goroutine per worker
}

// CallTimeout returns the per-call worker deadline.
func (d DispatchConfig) CallTimeout() time.Duration {
	return time.Duration(d.CallTimeoutMs) * time.Millisecond
}

// AggregationConfig holds paging and merge settings.
type AggregationConfig struct {
	DefaultPageSize int  `yaml:"default_page_size"`
	MaxPageSize     int  `yaml:"max_page_size"`
	Validate        bool `yaml:"validate"`  // reject unsorted or misaligned worker results
	Summaries       bool `yaml:"summaries"` // ask workers for summary text
	Mining          bool `yaml:"mining"`    // copy worker mining annotations into results
}

// CacheConfig holds result cache settings.
type CacheConfig struct {
	Enabled          bool     `yaml:"enabled"`
	LocalSize        int      `yaml:"local_size"` // entries in the in-process tier, 0 disables it
	Addrs            []string `yaml:"addrs"`      // empty disables the shared tier
	Password         string   `yaml:"password"`
	Standalone       bool     `yaml:"standalone"` // skip cluster discovery
	KeyPrefix        string   `yaml:"key_prefix"` // namespace for a shared instance
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// TTL returns the shared tier expiry.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSec) * time.Second
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration, expanding ${VAR} references, then applies
// defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Dispatch.CallTimeoutMs <= 0 {
		c.Dispatch.CallTimeoutMs = 2000
	}
	if c.Aggregation.DefaultPageSize <= 0 {
		c.Aggregation.DefaultPageSize = 10
	}
	if c.Aggregation.MaxPageSize <= 0 {
		c.Aggregation.MaxPageSize = 100
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 60
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Workers) == 0 {
		return fmt.Errorf("workers: at least one worker is required")
	}
	seen := make(map[uint32]bool, len(c.Workers))
	for i, w := range c.Workers {
		if w.ID == 0 {
			return fmt.Errorf("workers[%d].id must be positive", i)
		}
		if seen[w.ID] {
			return fmt.Errorf("workers[%d].id %d is duplicated", i, w.ID)
		}
		seen[w.ID] = true
		u, err := url.Parse(w.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("workers[%d].url must be an absolute URL, got %q", i, w.URL)
		}
	}
	if c.Dispatch.MaxConcurrency < 0 {
		return fmt.Errorf("dispatch.max_concurrency must not be negative, got %d", c.Dispatch.MaxConcurrency)
	}
	if c.Aggregation.DefaultPageSize > c.Aggregation.MaxPageSize {
		return fmt.Errorf("aggregation.default_page_size (%d) exceeds max_page_size (%d)",
			c.Aggregation.DefaultPageSize, c.Aggregation.MaxPageSize)
	}
	if c.Cache.Enabled && c.Cache.LocalSize <= 0 && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache is enabled but neither local_size nor addrs is set")
	}
	if c.Cache.LocalSize < 0 {
		return fmt.Errorf("cache.local_size must not be negative, got %d", c.Cache.LocalSize)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
