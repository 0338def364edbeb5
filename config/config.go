package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hupe1980/tubeanalyst/logging"
	"github.com/hupe1980/tubeanalyst/session"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TUBEANALYST"

// ErrUnknownProvider is returned (wrapped) for an unsupported llm.provider.
var ErrUnknownProvider = errors.New("unknown llm provider")

// Supported llm.provider values. ProviderNone disables the model so every
// answer comes from the fallback template.
const (
	ProviderNone      = "none"
	ProviderMock      = "mock"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
	LLM     LLMConfig     `mapstructure:"llm" yaml:"llm"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	Mode            string        `mapstructure:"mode" yaml:"mode"` // gin mode: debug, release, test
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type SessionConfig struct {
	MaxSessions           int           `mapstructure:"max_sessions" yaml:"max_sessions"`
	MaxMessagesPerSession int           `mapstructure:"max_messages_per_session" yaml:"max_messages_per_session"`
	Timeout               time.Duration `mapstructure:"timeout" yaml:"timeout"`
	CleanupInterval       time.Duration `mapstructure:"cleanup_interval" yaml:"cleanup_interval"`
	// BackgroundSweep additionally runs sweeps on a cron schedule every
	// CleanupInterval, independent of write traffic.
	BackgroundSweep bool `mapstructure:"background_sweep" yaml:"background_sweep"`
	ContextMessages int  `mapstructure:"context_messages" yaml:"context_messages"`
}

type LLMConfig struct {
	Provider    string        `mapstructure:"provider" yaml:"provider"`
	Model       string        `mapstructure:"model" yaml:"model"`
	APIKey      string        `mapstructure:"api_key" yaml:"api_key"`
	Temperature float64       `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int64         `mapstructure:"max_tokens" yaml:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type LogConfig struct {
	Level     string `mapstructure:"level" yaml:"level"`
	Format    string `mapstructure:"format" yaml:"format"` // json or text
	AddSource bool   `mapstructure:"add_source" yaml:"add_source"`
}

func setDefaults(v *viper.Viper) {
	sc := session.DefaultConfig()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("session.max_sessions", sc.MaxSessions)
	v.SetDefault("session.max_messages_per_session", sc.MaxMessagesPerSession)
	v.SetDefault("session.timeout", sc.SessionTimeout)
	v.SetDefault("session.cleanup_interval", sc.CleanupInterval)
	v.SetDefault("session.background_sweep", false)
	v.SetDefault("session.context_messages", session.DefaultContextMessages)

	v.SetDefault("llm.provider", ProviderNone)
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.timeout", 30*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.add_source", false)
}

// Load builds a Config. path names an optional YAML file ("" skips it);
// envFiles are .env files to load, defaulting to ./.env. Missing .env files
// are ignored, a missing YAML file is an error.
func Load(path string, envFiles ...string) (*Config, error) {
	if err := loadDotEnv(envFiles...); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv does not override variables already present in the environment.
func loadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load env file %s: %w", f, err)
		}
	}
	return nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr must not be empty")
	}
	if err := c.StoreConfig().Validate(); err != nil {
		return err
	}
	if c.Session.ContextMessages < 0 {
		return fmt.Errorf("session.context_messages must be >= 0, got %d", c.Session.ContextMessages)
	}
	switch strings.ToLower(c.LLM.Provider) {
	case "", ProviderNone, ProviderMock, ProviderAnthropic, ProviderOpenAI:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.LLM.Provider)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// StoreConfig maps the session section onto the store's limits.
func (c *Config) StoreConfig() session.Config {
	return session.Config{
		MaxSessions:           c.Session.MaxSessions,
		MaxMessagesPerSession: c.Session.MaxMessagesPerSession,
		SessionTimeout:        c.Session.Timeout,
		CleanupInterval:       c.Session.CleanupInterval,
	}
}

// LoggerConfig maps the log section onto a logging.LoggerConfig writing to stdout.
func (c *Config) LoggerConfig() *logging.LoggerConfig {
	cfg := logging.DefaultLoggerConfig()
	if lvl, err := logging.ParseLevel(c.Log.Level); err == nil {
		cfg.Level = lvl
	}
	if c.Log.Format != "" {
		cfg.Format = c.Log.Format
	}
	cfg.AddSource = c.Log.AddSource
	cfg.Component = "tubeanalyst"
	return cfg
}
