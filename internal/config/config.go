package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jackgladowsky/tierjobs/pkg/ollama"
)

type Config struct {
	Addr         string        `yaml:"addr"`
	APITimeout   time.Duration `yaml:"timeout"`
	DatabasePath string        `yaml:"database_path"`
	// IndexPath is where the title search index lives on disk. Empty means
	// an in-memory index rebuilt from the database on startup.
	IndexPath string `yaml:"index_path"`
	// RedisURL enables the shared stats cache. Empty falls back to an
	// in-process cache.
	RedisURL string        `yaml:"redis_url"`
	StatsTTL time.Duration `yaml:"stats_ttl"`
	// RecountSpec is a cron expression for the periodic job count
	// reconciliation. Empty disables the scheduler.
	RecountSpec string        `yaml:"recount_spec"`
	Ollama      ollama.Config `yaml:"ollama"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:         getEnv("TIERJOBS_ADDR", ":8080"),
		APITimeout:   15 * time.Second,
		DatabasePath: getEnv("TIERJOBS_DATABASE_PATH", "tierjobs.db"),
		IndexPath:    getEnv("TIERJOBS_INDEX_PATH", ""),
		RedisURL:     getEnv("TIERJOBS_REDIS_URL", ""),
		StatsTTL:     time.Hour,
		RecountSpec:  getEnv("TIERJOBS_RECOUNT_SPEC", "@hourly"),
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks required settings and fills Ollama defaults for anything
// the file left unset.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path is required")
	}
	if c.APITimeout <= 0 {
		c.APITimeout = 15 * time.Second
	}
	if c.StatsTTL <= 0 {
		c.StatsTTL = time.Hour
	}

	def := ollama.DefaultConfig()
	if c.Ollama.BaseURL == "" {
		c.Ollama.BaseURL = getEnv("TIERJOBS_OLLAMA_URL", def.BaseURL)
	}
	if c.Ollama.Model == "" {
		c.Ollama.Model = getEnv("TIERJOBS_OLLAMA_MODEL", def.Model)
	}
	if c.Ollama.Timeout <= 0 {
		c.Ollama.Timeout = def.Timeout
	}
	if c.Ollama.Retries == 0 {
		c.Ollama.Retries = def.Retries
	}
	if c.Ollama.Backoff <= 0 {
		c.Ollama.Backoff = def.Backoff
	}
	if c.Ollama.CircuitFailureThreshold == 0 {
		c.Ollama.CircuitFailureThreshold = def.CircuitFailureThreshold
	}
	if c.Ollama.CircuitReset <= 0 {
		c.Ollama.CircuitReset = def.CircuitReset
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
