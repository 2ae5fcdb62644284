package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  port: "9090"
  allowed_origins: ["http://localhost:3000"]
redis:
  addr: localhost:6379
  ttl: 15m
quiz:
  ttl: 5m
  history_cap: 80
  remote_timeout: 12s
llm:
  provider: anthropic
  model: claude-sonnet
logging:
  file: /tmp/acadtutor.log
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Redis.Addr != "localhost:6379" || cfg.Quiz.HistoryCap != 80 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.StorageBackend() != "redis" {
		t.Fatalf("expected redis backend inferred, got %s", cfg.StorageBackend())
	}

	llmCfg := cfg.LLMConfig()
	if llmCfg.Provider != "anthropic" || llmCfg.Anthropic.Model != "claude-sonnet" {
		t.Fatalf("unexpected llm config: %+v", llmCfg)
	}
	if llmCfg.Timeout != 12*time.Second {
		t.Fatalf("expected remote timeout applied, got %v", llmCfg.Timeout)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StorageBackend() != "memory" {
		t.Fatalf("expected memory backend, got %s", cfg.StorageBackend())
	}
	if cfg.LLMConfig().Provider != "groq" {
		t.Fatalf("expected groq default provider")
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	if _, err := Load(writeFile(t, "bad.yaml", "server: [")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("ACADTUTOR_STORAGE", "sqlite")
	t.Setenv("ACADTUTOR_HISTORY_CAP", "100")
	t.Setenv("ACADTUTOR_LLM_PROVIDER", "mock")

	cfg, err := Load(writeFile(t, "config.yaml", "server:\n  port: \"9090\"\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "7000" || cfg.StorageBackend() != "sqlite" || cfg.Quiz.HistoryCap != 100 {
		t.Fatalf("expected env overrides, got %+v", cfg)
	}
	if cfg.LLMConfig().Provider != "mock" {
		t.Fatalf("expected provider from env")
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "ACADTUTOR_TEST_DOTENV=from-file\n")
	t.Setenv("ACADTUTOR_TEST_DOTENV", "")
	os.Unsetenv("ACADTUTOR_TEST_DOTENV")

	if err := LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if got := os.Getenv("ACADTUTOR_TEST_DOTENV"); got != "from-file" {
		t.Fatalf("expected value from .env, got %q", got)
	}
}

func TestTTLDuration(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("garbage", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for bad input, got %v", got)
	}
	if got := TTLDuration("90s", time.Minute); got != 90*time.Second {
		t.Fatalf("expected parsed duration, got %v", got)
	}
}
