package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds client settings. Precedence: flags, then environment, then
// the YAML file, then defaults.
type Config struct {
	BackendURL  string        `yaml:"backend_url"`
	Timeout     time.Duration `yaml:"timeout"`
	Context     string        `yaml:"context"`
	Token       string        `yaml:"token"`
	TokenParam  string        `yaml:"token_param"`
	ListenAddr  string        `yaml:"listen_addr"`
	CORSOrigins []string      `yaml:"cors_origins"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() Config {
	return Config{
		BackendURL:  "http://localhost:8000",
		Timeout:     DefaultTimeout,
		ListenAddr:  ":8080",
		CORSOrigins: []string{"*"},
	}
}

// LoadConfig reads .env (if present), the optional YAML file at path, and
// JARVIS_* environment variables.
func LoadConfig(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		LogDebug("Skipping .env: %v", err)
	}

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, &ConfigError{Key: path, Err: err}
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, &ParseError{Source: "config", Key: path, Err: err}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.BackendURL = getEnvDefault("JARVIS_BACKEND_URL", cfg.BackendURL)
	cfg.Context = getEnvDefault("JARVIS_CONTEXT", cfg.Context)
	cfg.Token = getEnvDefault("JARVIS_TOKEN", cfg.Token)
	cfg.TokenParam = getEnvDefault("JARVIS_TOKEN_PARAM", cfg.TokenParam)
	cfg.ListenAddr = getEnvDefault("JARVIS_LISTEN_ADDR", cfg.ListenAddr)
	cfg.CORSOrigins = getEnvListDefault("JARVIS_CORS_ORIGINS", cfg.CORSOrigins)

	if raw := strings.TrimSpace(os.Getenv("JARVIS_TIMEOUT")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return &ConfigError{Key: "JARVIS_TIMEOUT", Err: err}
		}
		cfg.Timeout = d
	}
	return nil
}

// Validate checks required settings
func (c Config) Validate() error {
	if strings.TrimSpace(c.BackendURL) == "" {
		return &ConfigError{Key: "backend_url", Err: errors.New("must not be empty")}
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return &ConfigError{Key: "backend_url", Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ConfigError{Key: "backend_url", Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}
	if c.Timeout < 0 {
		return &ConfigError{Key: "timeout", Err: errors.New("must not be negative")}
	}
	return nil
}

func getEnvDefault(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func getEnvListDefault(key string, def []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
