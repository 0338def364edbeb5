// Package tubeanalyst wires a bounded session store, an analyst and an
// optional background sweeper into a ready-to-use assistant. Most
// applications:
//  1. Create a TubeAnalyst via New (or FromConfig)
//  2. Call Ask for every incoming question, passing the caller's session id
//  3. Call Close on shutdown
//
// Defaults run fully in memory with no model, so every answer is a fallback
// until a model.Model is supplied.
package tubeanalyst

import (
	"context"
	"fmt"
	"strings"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/hupe1980/tubeanalyst/analyst"
	"github.com/hupe1980/tubeanalyst/config"
	"github.com/hupe1980/tubeanalyst/core"
	"github.com/hupe1980/tubeanalyst/logging"
	"github.com/hupe1980/tubeanalyst/model"
	"github.com/hupe1980/tubeanalyst/model/anthropic"
	"github.com/hupe1980/tubeanalyst/model/openai"
	"github.com/hupe1980/tubeanalyst/session"
)

// Options configures the TubeAnalyst instance.
type Options struct {
	// SessionConfig sizes the default LRU store. Ignored when Store is set.
	SessionConfig session.Config
	// Store replaces the default in-memory LRU store.
	Store core.SessionStore

	// Model answers questions; nil means fallback answers only.
	Model           model.Model
	ModelTimeout    time.Duration
	ContextMessages int

	// BackgroundSweep runs CleanupExpiredSessions on SweepSchedule in
	// addition to the sweeps triggered by writes.
	BackgroundSweep bool
	// SweepSchedule defaults to every SessionConfig.CleanupInterval.
	SweepSchedule string

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// TubeAnalyst is the high-level facade.
type TubeAnalyst struct {
	store   core.SessionStore
	analyst *analyst.Analyst
	sweeper *session.Sweeper
	logger  logging.Logger
}

// New creates a TubeAnalyst. When BackgroundSweep is set the sweeper is
// already running on return.
func New(optFns ...func(o *Options)) (*TubeAnalyst, error) {
	opts := Options{
		SessionConfig:   session.DefaultConfig(),
		ModelTimeout:    30 * time.Second,
		ContextMessages: session.DefaultContextMessages,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	store := opts.Store
	if store == nil {
		s, err := session.NewLRUStore(opts.SessionConfig, func(o *session.Options) { o.Logger = opts.Logger })
		if err != nil {
			return nil, err
		}
		store = s
	}

	a, err := analyst.New(store, func(o *analyst.Options) {
		o.Model = opts.Model
		o.Logger = opts.Logger
		o.Timeout = opts.ModelTimeout
		o.ContextMessages = opts.ContextMessages
	})
	if err != nil {
		return nil, err
	}

	t := &TubeAnalyst{store: store, analyst: a, logger: opts.Logger}

	if opts.BackgroundSweep {
		schedule := opts.SweepSchedule
		if schedule == "" {
			schedule = session.EverySchedule(opts.SessionConfig.CleanupInterval)
		}
		sw, err := session.NewSweeper(store, func(o *session.SweeperOptions) {
			o.Schedule = schedule
			o.Logger = opts.Logger
		})
		if err != nil {
			return nil, err
		}
		if err := sw.Start(); err != nil {
			return nil, err
		}
		t.sweeper = sw
	}

	return t, nil
}

// FromConfig builds a TubeAnalyst from loaded process configuration.
func FromConfig(cfg *config.Config, logger logging.Logger) (*TubeAnalyst, error) {
	m, err := NewModel(cfg.LLM)
	if err != nil {
		return nil, err
	}
	return New(func(o *Options) {
		o.SessionConfig = cfg.StoreConfig()
		o.Model = m
		o.ModelTimeout = cfg.LLM.Timeout
		o.ContextMessages = cfg.Session.ContextMessages
		o.BackgroundSweep = cfg.Session.BackgroundSweep
		o.Logger = logger
	})
}

// NewModel constructs the model named by cfg.Provider. It returns a nil
// Model for the "none" provider.
func NewModel(cfg config.LLMConfig) (model.Model, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", config.ProviderNone:
		return nil, nil
	case config.ProviderMock:
		name := cfg.Model
		if name == "" {
			name = "mock"
		}
		return model.NewMockModel(name), nil
	case config.ProviderAnthropic:
		return anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Model != "" {
				o.Model = anthropicsdk.Model(cfg.Model)
			}
			if cfg.MaxTokens > 0 {
				o.MaxTokens = cfg.MaxTokens
			}
			o.Temperature = cfg.Temperature
			o.APIKey = cfg.APIKey
		}), nil
	case config.ProviderOpenAI:
		return openai.NewModel(func(o *openai.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			if cfg.MaxTokens > 0 {
				o.MaxCompletionTokens = cfg.MaxTokens
			}
			o.Temperature = cfg.Temperature
			o.APIKey = cfg.APIKey
		}), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownProvider, cfg.Provider)
	}
}

// Ask answers q within its session.
func (t *TubeAnalyst) Ask(ctx context.Context, q analyst.Question) (*analyst.Answer, error) {
	return t.analyst.Ask(ctx, q)
}

// Store returns the session store for diagnostics and maintenance.
func (t *TubeAnalyst) Store() core.SessionStore { return t.store }

// Close stops the background sweeper, if any. Sessions are not persisted.
func (t *TubeAnalyst) Close() {
	if t.sweeper != nil {
		t.sweeper.Stop()
	}
}
