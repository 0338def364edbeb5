package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hupe1980/tubeanalyst/logging"
	"github.com/hupe1980/tubeanalyst/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// noEnvFile points Load at a .env that does not exist.
func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, session.DefaultConfig(), cfg.StoreConfig())
	assert.Equal(t, session.DefaultContextMessages, cfg.Session.ContextMessages)
	assert.False(t, cfg.Session.BackgroundSweep)
	assert.Equal(t, ProviderNone, cfg.LLM.Provider)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  addr: ":9090"
session:
  max_sessions: 10
  max_messages_per_session: 4
  timeout: 30m
  cleanup_interval: 5m
  background_sweep: true
llm:
  provider: openai
  model: gpt-4o-mini
  temperature: 0.1
log:
  level: debug
  format: text
`)

	cfg, err := Load(path, noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, session.Config{
		MaxSessions:           10,
		MaxMessagesPerSession: 4,
		SessionTimeout:        30 * time.Minute,
		CleanupInterval:       5 * time.Minute,
	}, cfg.StoreConfig())
	assert.True(t, cfg.Session.BackgroundSweep)
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.InDelta(t, 0.1, cfg.LLM.Temperature, 1e-9)

	lc := cfg.LoggerConfig()
	assert.Equal(t, logging.LogLevelDebug, lc.Level)
	assert.Equal(t, "text", lc.Format)
	assert.Equal(t, "tubeanalyst", lc.Component)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "config.yaml", "session:\n  max_sessions: 10\n")
	t.Setenv("TUBEANALYST_SESSION_MAX_SESSIONS", "25")
	t.Setenv("TUBEANALYST_SESSION_TIMEOUT", "2h")

	cfg, err := Load(path, noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Session.MaxSessions)
	assert.Equal(t, 2*time.Hour, cfg.Session.Timeout)
}

func TestLoad_DotEnvFile(t *testing.T) {
	envFile := writeFile(t, ".env", "TUBEANALYST_LLM_PROVIDER=mock\nTUBEANALYST_LLM_MODEL=stub\n")
	t.Cleanup(func() {
		_ = os.Unsetenv("TUBEANALYST_LLM_PROVIDER")
		_ = os.Unsetenv("TUBEANALYST_LLM_MODEL")
	})

	cfg, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, ProviderMock, cfg.LLM.Provider)
	assert.Equal(t, "stub", cfg.LLM.Model)
}

func TestLoad_MissingYAMLFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), noEnvFile(t))
	require.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Run("provider", func(t *testing.T) {
		t.Setenv("TUBEANALYST_LLM_PROVIDER", "carrier-pigeon")
		_, err := Load("", noEnvFile(t))
		require.ErrorIs(t, err, ErrUnknownProvider)
	})

	t.Run("session limits", func(t *testing.T) {
		t.Setenv("TUBEANALYST_SESSION_MAX_SESSIONS", "0")
		_, err := Load("", noEnvFile(t))
		require.ErrorIs(t, err, session.ErrInvalidConfig)
	})

	t.Run("log level", func(t *testing.T) {
		t.Setenv("TUBEANALYST_LOG_LEVEL", "loud")
		_, err := Load("", noEnvFile(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "log.level")
	})
}
