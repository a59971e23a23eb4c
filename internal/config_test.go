package internal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearJarvisEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"JARVIS_BACKEND_URL", "JARVIS_TIMEOUT", "JARVIS_CONTEXT", "JARVIS_TOKEN",
		"JARVIS_TOKEN_PARAM", "JARVIS_LISTEN_ADDR", "JARVIS_CORS_ORIGINS",
	} {
		t.Setenv(key, "")
	}
	// keep a developer .env out of the test
	t.Chdir(t.TempDir())
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearJarvisEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
	require.Equal(t, 10*time.Minute, cfg.Timeout)
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	clearJarvisEnv(t)

	path := filepath.Join(t.TempDir(), "jarvis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend_url: https://genie.example.com
timeout: 2m
context: sales
cors_origins:
  - https://app.example.com
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "https://genie.example.com", cfg.BackendURL)
	require.Equal(t, 2*time.Minute, cfg.Timeout)
	require.Equal(t, "sales", cfg.Context)
	require.Equal(t, []string{"https://app.example.com"}, cfg.CORSOrigins)

	t.Setenv("JARVIS_CONTEXT", "homeloan")
	t.Setenv("JARVIS_TIMEOUT", "30s")
	t.Setenv("JARVIS_CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "homeloan", cfg.Context)
	require.Equal(t, 30*time.Second, cfg.Timeout)
	require.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		clearJarvisEnv(t)
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		var cfgErr *ConfigError
		require.True(t, errors.As(err, &cfgErr))
	})

	t.Run("bad yaml", func(t *testing.T) {
		clearJarvisEnv(t)
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("backend_url: [unclosed"), 0o644))
		_, err := LoadConfig(path)
		var parseErr *ParseError
		require.True(t, errors.As(err, &parseErr))
	})

	t.Run("bad timeout", func(t *testing.T) {
		clearJarvisEnv(t)
		t.Setenv("JARVIS_TIMEOUT", "soon")
		_, err := LoadConfig("")
		var cfgErr *ConfigError
		require.True(t, errors.As(err, &cfgErr))
		require.Equal(t, "JARVIS_TIMEOUT", cfgErr.Key)
	})

	t.Run("bad scheme", func(t *testing.T) {
		clearJarvisEnv(t)
		t.Setenv("JARVIS_BACKEND_URL", "ftp://genie")
		_, err := LoadConfig("")
		require.Error(t, err)
	})
}

func TestLoadConfig_DotEnv(t *testing.T) {
	clearJarvisEnv(t)
	os.Unsetenv("JARVIS_CONTEXT")
	require.NoError(t, os.WriteFile(".env", []byte("JARVIS_CONTEXT=fromdotenv\n"), 0o644))

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, "fromdotenv", cfg.Context)
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.BackendURL = ""
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Timeout = -time.Second
	require.Error(t, cfg.Validate())
}
