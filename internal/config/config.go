// Package config loads blogd settings from an optional YAML file and the
// environment.
package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/kimhsiao/blogai/internal/errors"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// AppName names the XDG subdirectories.
const AppName = "blogai"

// AIConfig configures the chat-completion router.
type AIConfig struct {
	Token   string `yaml:"token"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// GenerationConfig configures periodic and seed generation.
type GenerationConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Schedule   string   `yaml:"schedule"`
	Topics     []string `yaml:"topics"`
	SeedTopics []string `yaml:"seed_topics"`
}

// Config is the complete service configuration.
type Config struct {
	Port        int              `yaml:"port"`
	Env         string           `yaml:"env"`
	LogLevel    string           `yaml:"log_level"`
	DataDir     string           `yaml:"data_dir"`
	FrontendURL string           `yaml:"frontend_url"`
	StaticDir   string           `yaml:"static_dir"`
	AI          AIConfig         `yaml:"ai"`
	Generation  GenerationConfig `yaml:"generation"`
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// AITimeout returns the parsed model call timeout, 60s when unset.
func (c *Config) AITimeout() time.Duration {
	d, err := time.ParseDuration(c.AI.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// AllowedOrigin is the CORS origin: FrontendURL in production when set,
// otherwise any origin.
func (c *Config) AllowedOrigin() string {
	if c.IsProduction() && c.FrontendURL != "" {
		return c.FrontendURL
	}
	return "*"
}

// DefaultConfigPath is where Load looks when no path is given.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// DefaultDataDir holds the database when data_dir is unset.
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads defaults, then the YAML file at path, then the process
// environment. An explicit path must exist; the default path may not.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.Getenv)
}

// LoadWithEnv is Load with an injectable environment lookup.
func LoadWithEnv(path string, getenv func(string) string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrConfiguration, "parsing config "+path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// embedded defaults only
	default:
		return nil, errors.Wrap(errors.ErrConfiguration, "reading config "+path, err)
	}

	if err := applyEnv(cfg, getenv); err != nil {
		return nil, err
	}
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(errors.ErrConfiguration, "PORT must be a number", err)
		}
		cfg.Port = port
	}

	strs := map[string]*string{
		"DB_PATH":             &cfg.DataDir,
		"HF_TOKEN":            &cfg.AI.Token,
		"HF_MODEL":            &cfg.AI.Model,
		"HF_BASE_URL":         &cfg.AI.BaseURL,
		"AI_TIMEOUT":          &cfg.AI.Timeout,
		"GENERATION_SCHEDULE": &cfg.Generation.Schedule,
		"FRONTEND_URL":        &cfg.FrontendURL,
		"LOG_LEVEL":           &cfg.LogLevel,
		"STATIC_DIR":          &cfg.StaticDir,
	}
	for key, dst := range strs {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	// APP_ENV wins over NODE_ENV; the latter is kept for existing deployments.
	if v := getenv("NODE_ENV"); v != "" {
		cfg.Env = v
	}
	if v := getenv("APP_ENV"); v != "" {
		cfg.Env = v
	}

	if v := getenv("GENERATION_TOPICS"); v != "" {
		cfg.Generation.Topics = splitList(v)
	}
	if v := getenv("GENERATION_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(errors.ErrConfiguration, "GENERATION_ENABLED must be a boolean", err)
		}
		cfg.Generation.Enabled = enabled
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New(errors.ErrConfiguration, fmt.Sprintf("port %d out of range", c.Port))
	}
	if c.AI.Timeout != "" {
		if d, err := time.ParseDuration(c.AI.Timeout); err != nil || d <= 0 {
			return errors.New(errors.ErrConfiguration, fmt.Sprintf("ai.timeout %q is not a positive duration", c.AI.Timeout))
		}
	}
	if c.AI.BaseURL != "" {
		u, err := url.Parse(c.AI.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return errors.New(errors.ErrConfiguration, fmt.Sprintf("ai.base_url %q must be an http(s) URL", c.AI.BaseURL))
		}
	}
	if c.Generation.Enabled {
		if _, err := cron.ParseStandard(c.Generation.Schedule); err != nil {
			return errors.Wrap(errors.ErrConfiguration, fmt.Sprintf("generation.schedule %q", c.Generation.Schedule), err)
		}
		if len(c.Generation.Topics) == 0 {
			return errors.New(errors.ErrConfiguration, "generation.topics must not be empty")
		}
	}
	for _, topic := range append(append([]string{}, c.Generation.Topics...), c.Generation.SeedTopics...) {
		if strings.TrimSpace(topic) == "" {
			return errors.New(errors.ErrConfiguration, "generation topics must not be blank")
		}
	}
	return nil
}
