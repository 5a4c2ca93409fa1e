package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kimhsiao/blogai/internal/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func envMap(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadDefaults()
	if err != nil {
		t.Fatalf("loadDefaults: %v", err)
	}
	if cfg.Port != 3001 {
		t.Errorf("Port = %d, want 3001", cfg.Port)
	}
	if cfg.Generation.Schedule != "0 2 * * *" {
		t.Errorf("Schedule = %q", cfg.Generation.Schedule)
	}
	if len(cfg.Generation.Topics) != 3 || cfg.Generation.Topics[0] != "Tecnologia" {
		t.Errorf("Topics = %v", cfg.Generation.Topics)
	}
	if len(cfg.Generation.SeedTopics) != 5 || cfg.Generation.SeedTopics[4] != "Machine Learning" {
		t.Errorf("SeedTopics = %v", cfg.Generation.SeedTopics)
	}
	if cfg.AI.Model != "deepseek-ai/DeepSeek-V3.2" {
		t.Errorf("Model = %q", cfg.AI.Model)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoad_fileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
port: 8080
data_dir: /tmp/blog
generation:
  enabled: true
  schedule: "*/30 * * * *"
  topics: [Go]
`)
	cfg, err := LoadWithEnv(path, envMap(nil))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.DataDir != "/tmp/blog" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if len(cfg.Generation.Topics) != 1 || cfg.Generation.Topics[0] != "Go" {
		t.Errorf("Topics = %v, want [Go]", cfg.Generation.Topics)
	}
	// Untouched keys keep their defaults.
	if cfg.AI.BaseURL != "https://router.huggingface.co/v1" {
		t.Errorf("BaseURL = %q", cfg.AI.BaseURL)
	}
}

func TestLoad_envOverridesFile(t *testing.T) {
	path := writeConfig(t, "port: 8080\n")
	cfg, err := LoadWithEnv(path, envMap(map[string]string{
		"PORT":              "9090",
		"DB_PATH":           "/var/lib/blog",
		"HF_TOKEN":          "hf_secret",
		"AI_TIMEOUT":        "15s",
		"GENERATION_TOPICS": "Go, Rust ,,Zig",
		"NODE_ENV":          "production",
		"FRONTEND_URL":      "https://blog.example.com",
	}))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9090 || cfg.Addr() != ":9090" {
		t.Errorf("Port = %d", cfg.Port)
	}
	if cfg.DataDir != "/var/lib/blog" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.AI.Token != "hf_secret" {
		t.Errorf("Token not applied")
	}
	if cfg.AITimeout() != 15*time.Second {
		t.Errorf("AITimeout = %v", cfg.AITimeout())
	}
	if got := cfg.Generation.Topics; len(got) != 3 || got[1] != "Rust" || got[2] != "Zig" {
		t.Errorf("Topics = %v", got)
	}
	if !cfg.IsProduction() {
		t.Error("NODE_ENV=production not honored")
	}
	if cfg.AllowedOrigin() != "https://blog.example.com" {
		t.Errorf("AllowedOrigin = %q", cfg.AllowedOrigin())
	}
}

func TestLoad_appEnvWinsOverNodeEnv(t *testing.T) {
	cfg, err := LoadWithEnv(writeConfig(t, ""), envMap(map[string]string{
		"NODE_ENV": "production",
		"APP_ENV":  "development",
	}))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IsProduction() {
		t.Error("APP_ENV should take precedence")
	}
	if cfg.AllowedOrigin() != "*" {
		t.Errorf("AllowedOrigin = %q, want *", cfg.AllowedOrigin())
	}
}

func TestLoad_emptyDataDirUsesXDG(t *testing.T) {
	cfg, err := LoadWithEnv(writeConfig(t, ""), envMap(nil))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != DefaultDataDir() {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, DefaultDataDir())
	}
}

func TestLoad_missingExplicitPath(t *testing.T) {
	_, err := LoadWithEnv(filepath.Join(t.TempDir(), "nope.yaml"), envMap(nil))
	if !errors.Is(err, errors.ErrConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestLoad_invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{"bad yaml", "port: [", nil},
		{"bad port env", "", map[string]string{"PORT": "http"}},
		{"port range", "port: 70000", nil},
		{"bad schedule", "", map[string]string{"GENERATION_SCHEDULE": "daily-ish"}},
		{"bad timeout", "", map[string]string{"AI_TIMEOUT": "soon"}},
		{"bad base url", "", map[string]string{"HF_BASE_URL": "ftp://x"}},
		{"blank seed topic", "generation:\n  seed_topics: [\"  \"]", nil},
		{"bad enabled flag", "", map[string]string{"GENERATION_ENABLED": "maybe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadWithEnv(writeConfig(t, tt.yaml), envMap(tt.env))
			if !errors.Is(err, errors.ErrConfiguration) {
				t.Errorf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestValidate_disabledGenerationSkipsSchedule(t *testing.T) {
	cfg, err := LoadWithEnv(writeConfig(t, ""), envMap(map[string]string{
		"GENERATION_ENABLED":  "false",
		"GENERATION_SCHEDULE": "not a cron",
	}))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Generation.Enabled {
		t.Error("generation should be disabled")
	}
}
