package tubeanalyst

import (
	"context"
	"testing"
	"time"

	"github.com/hupe1980/tubeanalyst/analyst"
	"github.com/hupe1980/tubeanalyst/config"
	"github.com/hupe1980/tubeanalyst/model"
	"github.com/hupe1980/tubeanalyst/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	ta, err := New()
	require.NoError(t, err)
	defer ta.Close()

	ans, err := ta.Ask(context.Background(), analyst.Question{SessionID: "s1", Text: "views?"})
	require.NoError(t, err)
	assert.Equal(t, analyst.SourceFallback, ans.Source)

	stats := ta.Store().GetStats()
	assert.Equal(t, 1, stats.ActiveSessions)
	assert.Equal(t, session.DefaultConfig().MaxSessions, stats.MaxSessions)
}

func TestNew_ConversationAcrossQuestions(t *testing.T) {
	llm := model.NewMockModel("mock")
	ta, err := New(func(o *Options) {
		o.Model = llm
		o.SessionConfig = session.Config{
			MaxSessions:           2,
			MaxMessagesPerSession: 2,
			SessionTimeout:        time.Hour,
			CleanupInterval:       time.Hour,
		}
	})
	require.NoError(t, err)
	defer ta.Close()

	for _, q := range []string{"first", "second", "third"} {
		_, err := ta.Ask(context.Background(), analyst.Question{SessionID: "s1", Text: q})
		require.NoError(t, err)
	}

	info, ok := ta.Store().GetSessionInfo("s1")
	require.True(t, ok)
	assert.Equal(t, 2, info.MessageCount)

	reqs := llm.Requests()
	require.Len(t, reqs, 3)
	last := reqs[2].Contents[0].Text()
	assert.Contains(t, last, "Previous question: first")
	assert.Contains(t, last, "Previous question: second")
}

func TestNew_InvalidSessionConfig(t *testing.T) {
	_, err := New(func(o *Options) { o.SessionConfig = session.Config{} })
	require.ErrorIs(t, err, session.ErrInvalidConfig)
}

func TestNew_BackgroundSweep(t *testing.T) {
	ta, err := New(func(o *Options) { o.BackgroundSweep = true })
	require.NoError(t, err)
	require.NotNil(t, ta.sweeper)
	assert.True(t, ta.sweeper.IsRunning())

	ta.Close()
	assert.False(t, ta.sweeper.IsRunning())
}

func TestNew_InvalidSweepSchedule(t *testing.T) {
	_, err := New(func(o *Options) {
		o.BackgroundSweep = true
		o.SweepSchedule = "sometimes"
	})
	require.Error(t, err)
}

func TestNewModel(t *testing.T) {
	m, err := NewModel(config.LLMConfig{Provider: config.ProviderNone})
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = NewModel(config.LLMConfig{Provider: "MOCK", Model: "stub"})
	require.NoError(t, err)
	assert.Equal(t, model.Info{Name: "stub", Provider: "mock"}, m.Info())

	m, err = NewModel(config.LLMConfig{Provider: config.ProviderOpenAI, Model: "gpt-test", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, model.Info{Name: "gpt-test", Provider: "openai"}, m.Info())

	m, err = NewModel(config.LLMConfig{Provider: config.ProviderAnthropic, Model: "claude-test", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, model.Info{Name: "claude-test", Provider: "anthropic"}, m.Info())

	_, err = NewModel(config.LLMConfig{Provider: "pigeon"})
	require.ErrorIs(t, err, config.ErrUnknownProvider)
}

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{
		Session: config.SessionConfig{
			MaxSessions:           3,
			MaxMessagesPerSession: 2,
			Timeout:               time.Hour,
			CleanupInterval:       time.Minute,
			ContextMessages:       1,
		},
		LLM: config.LLMConfig{Provider: config.ProviderMock, Timeout: time.Second},
	}

	ta, err := FromConfig(cfg, nil)
	require.NoError(t, err)
	defer ta.Close()

	ans, err := ta.Ask(context.Background(), analyst.Question{SessionID: "s", Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, analyst.SourceModel, ans.Source)
	assert.Equal(t, "mock", ans.Model)
	assert.Equal(t, 3, ta.Store().GetStats().MaxSessions)
}
