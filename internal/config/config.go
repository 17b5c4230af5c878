// Package config loads the glossa service configuration from a TOML file
// with GLOSSA_ environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/glossahq/glossa/internal/llm"
	"github.com/glossahq/glossa/pkg/cache"
	"github.com/glossahq/glossa/pkg/database"
	"github.com/glossahq/glossa/pkg/vectordb"
)

// LogConfig controls the global logger.
type LogConfig struct {
	Level string `json:"level" mapstructure:"level"`
}

// ServerConfig holds the HTTP listener settings. TLS is enabled when both
// CertFile and KeyFile are set.
type ServerConfig struct {
	Addr             string `json:"addr" mapstructure:"addr"`
	CertFile         string `json:"cert_file" mapstructure:"cert_file"`
	KeyFile          string `json:"key_file" mapstructure:"key_file"`
	GracefulShutdown uint   `json:"graceful_shutdown" mapstructure:"graceful_shutdown"`
}

// Config is the root configuration of the glossa service.
type Config struct {
	Env    string          `json:"env" mapstructure:"env"`
	Log    LogConfig       `json:"log" mapstructure:"log"`
	Server ServerConfig    `json:"server" mapstructure:"server"`
	Scylla database.Config `json:"scylla" mapstructure:"scylla"`
	Qdrant vectordb.Config `json:"qdrant" mapstructure:"qdrant"`
	Redis  cache.Config    `json:"redis" mapstructure:"redis"`
	AI     llm.Config      `json:"ai" mapstructure:"ai"`
}

// Load reads the file named by CONFIG_FILE_PATH, falling back to
// ./config/default.toml.
func Load() (*Config, error) {
	path := os.Getenv("CONFIG_FILE_PATH")
	if path == "" {
		path = "./config/default.toml"
	}
	return LoadFromFile(path)
}

// LoadFromFile reads the given config file. Environment variables prefixed
// with GLOSSA_ override file values, with dots mapped to underscores, so
// GLOSSA_SCYLLA_PASSWORD overrides scylla.password.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("GLOSSA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("log.level", "info")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.graceful_shutdown", 10)
	v.SetDefault("scylla.nodes", []string{"127.0.0.1:9042"})
	v.SetDefault("qdrant.url", "http://127.0.0.1:6334")
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.max_connections", 10)
	v.SetDefault("ai.openai.agent_endpoint", "https://api.openai.com")
}

// Keyspace returns the scylla keyspace for the configured environment. The
// test environment gets its own keyspace so suites never touch live data.
func (c *Config) Keyspace() string {
	if c.Env == "test" {
		return "glossa_test"
	}
	return "glossa"
}

// IsProduction reports whether the service runs in the prod environment.
func (c *Config) IsProduction() bool {
	return c.Env == "prod"
}
