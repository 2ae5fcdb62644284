package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"acadtutor/internal/llm"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
		RequestTimeout string   `yaml:"request_timeout"`
	} `yaml:"server"`
	// Storage selects the progress backend: memory, redis, postgres or sqlite.
	Storage struct {
		Backend string `yaml:"backend"`
	} `yaml:"storage"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		DSN string `yaml:"dsn"`
	} `yaml:"sqlite"`
	Quiz struct {
		TTL           string `yaml:"ttl"`
		HistoryCap    int    `yaml:"history_cap"`
		RemoteTimeout string `yaml:"remote_timeout"`
	} `yaml:"quiz"`
	LLM struct {
		Provider          string  `yaml:"provider"`
		Model             string  `yaml:"model"`
		BaseURL           string  `yaml:"base_url"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
	} `yaml:"llm"`
	Logging struct {
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"logging"`
}

// Load reads YAML config from path, then applies environment overrides.
// A missing file yields the defaults so the service can run from env alone.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadDotEnv loads .env files into the process environment without overriding set variables.
// Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("ACADTUTOR_ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("ACADTUTOR_STORAGE"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Postgres.URL = v
	}
	if v := os.Getenv("ACADTUTOR_SQLITE_DSN"); v != "" {
		c.SQLite.DSN = v
	}
	if v := os.Getenv("ACADTUTOR_HISTORY_CAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Quiz.HistoryCap = n
		}
	}
	if v := os.Getenv("ACADTUTOR_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
}

// StorageBackend resolves the progress backend, inferring it from the configured stores when unset.
func (c Config) StorageBackend() string {
	if c.Storage.Backend != "" {
		return c.Storage.Backend
	}
	switch {
	case c.Postgres.URL != "":
		return "postgres"
	case c.Redis.Addr != "":
		return "redis"
	default:
		return "memory"
	}
}

// LLMConfig layers the YAML llm section over the provider defaults, then the LLM environment variables.
func (c Config) LLMConfig() llm.Config {
	out := llm.DefaultConfig()
	if c.LLM.Provider != "" {
		out.Provider = c.LLM.Provider
	}
	if c.LLM.Model != "" {
		switch out.Provider {
		case "groq":
			out.Groq.Model = c.LLM.Model
		case "openai":
			out.OpenAI.Model = c.LLM.Model
		case "anthropic":
			out.Anthropic.Model = c.LLM.Model
		case "gemini":
			out.Gemini.Model = c.LLM.Model
		}
	}
	if c.LLM.BaseURL != "" {
		switch out.Provider {
		case "groq":
			out.Groq.BaseURL = c.LLM.BaseURL
		case "openai":
			out.OpenAI.BaseURL = c.LLM.BaseURL
		case "anthropic":
			out.Anthropic.BaseURL = c.LLM.BaseURL
		}
	}
	if c.LLM.RequestsPerSecond > 0 {
		out.RateLimit.RequestsPerSecond = c.LLM.RequestsPerSecond
	}
	if c.LLM.Burst > 0 {
		out.RateLimit.Burst = c.LLM.Burst
	}
	out.Timeout = TTLDuration(c.Quiz.RemoteTimeout, out.Timeout)
	return out.ApplyEnv()
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
