package analyst

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hupe1980/tubeanalyst/core"
	"github.com/hupe1980/tubeanalyst/internal/testutil"
	"github.com/hupe1980/tubeanalyst/model"
	"github.com/hupe1980/tubeanalyst/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStore records store interactions for assertions.
type MockStore struct{ mock.Mock }

func (m *MockStore) AddMessage(sessionID, userText, responseText, sourceRef string) {
	m.Called(sessionID, userText, responseText, sourceRef)
}

func (m *MockStore) GetSessionContext(sessionID string, maxMessages int) string {
	return m.Called(sessionID, maxMessages).String(0)
}

func (m *MockStore) RecentMessages(sessionID string, n int) []core.Message {
	args := m.Called(sessionID, n)
	msgs, _ := args.Get(0).([]core.Message)
	return msgs
}

func (m *MockStore) GetSessionInfo(sessionID string) (core.SessionInfo, bool) {
	args := m.Called(sessionID)
	return args.Get(0).(core.SessionInfo), args.Bool(1)
}

func (m *MockStore) RemoveSession(sessionID string) bool { return m.Called(sessionID).Bool(0) }

func (m *MockStore) CleanupExpiredSessions() int { return m.Called().Int(0) }

func (m *MockStore) GetStats() core.Stats { return m.Called().Get(0).(core.Stats) }

func (m *MockStore) GetAllSessions() []core.SessionInfo {
	infos, _ := m.Called().Get(0).([]core.SessionInfo)
	return infos
}

func (m *MockStore) ClearAllSessions() int { return m.Called().Int(0) }

var _ core.SessionStore = (*MockStore)(nil)

func newStore(t *testing.T) *session.LRUStore {
	t.Helper()
	store, err := session.NewLRUStore(session.DefaultConfig())
	require.NoError(t, err)
	return store
}

// blockingModel waits for the context and reports its error.
type blockingModel struct{ onCall func() }

func (b blockingModel) Generate(ctx context.Context, _ model.Request) (<-chan model.Response, <-chan error) {
	respCh := make(chan model.Response)
	errCh := make(chan error, 1)
	go func() {
		defer close(respCh)
		defer close(errCh)
		if b.onCall != nil {
			b.onCall()
		}
		<-ctx.Done()
		errCh <- ctx.Err()
	}()
	return respCh, errCh
}

func (blockingModel) Info() model.Info { return model.Info{Name: "blocking"} }

func TestAnalyst_AskUsesModelAndStoresExchange(t *testing.T) {
	store := newStore(t)
	llm := model.NewMockModel("mock-llm")
	a, err := New(store, func(o *Options) { o.Model = llm })
	require.NoError(t, err)

	ans, err := a.Ask(context.Background(), Question{
		SessionID:   "s1",
		Text:        "Which video had the most views?",
		SourceRef:   "videos.csv",
		DataSummary: "top video: intro (1200 views)",
	})
	require.NoError(t, err)

	assert.Equal(t, SourceModel, ans.Source)
	assert.Equal(t, "mock-llm", ans.Model)
	assert.Equal(t, "s1", ans.SessionID)
	assert.True(t, strings.HasPrefix(ans.Text, "Mock response to: "))

	msgs := store.RecentMessages("s1", 5)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Which video had the most views?", msgs[0].UserText)
	assert.Equal(t, ans.Text, msgs[0].ResponseText)
	assert.Equal(t, "videos.csv", msgs[0].SourceRef)

	reqs := llm.Requests()
	require.Len(t, reqs, 1)
	prompt := reqs[0].Contents[0].Text()
	assert.Contains(t, prompt, "Data (videos.csv):\ntop video: intro (1200 views)")
	assert.Contains(t, prompt, "Question: Which video had the most views?")
	assert.NotContains(t, prompt, "Conversation so far")
	assert.Equal(t, defaultInstructions, reqs[0].Instructions)
}

func TestAnalyst_PromptCarriesHistory(t *testing.T) {
	store := newStore(t)
	store.AddMessage("s1", "q1", "a1", "")
	store.AddMessage("s1", "q2", "a2", "")
	store.AddMessage("s1", "q3", "a3", "")
	store.AddMessage("s1", "q4", "a4", "")

	llm := model.NewMockModel("mock-llm")
	a, err := New(store, func(o *Options) { o.Model = llm })
	require.NoError(t, err)

	_, err = a.Ask(context.Background(), Question{SessionID: "s1", Text: "and now?"})
	require.NoError(t, err)

	prompt := llm.Requests()[0].Contents[0].Text()
	assert.Contains(t, prompt, "Conversation so far:\nPrevious question: q2")
	assert.Contains(t, prompt, "Previous answer: a4")
	assert.NotContains(t, prompt, "q1", "only the default number of messages is folded in")
}

func TestAnalyst_EmptyQuestion(t *testing.T) {
	store := &MockStore{}
	a, err := New(store)
	require.NoError(t, err)

	_, err = a.Ask(context.Background(), Question{SessionID: "s1", Text: "   "})
	require.ErrorIs(t, err, ErrEmptyQuestion)
	store.AssertNotCalled(t, "AddMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyst_FallbackWithoutModel(t *testing.T) {
	store := &MockStore{}
	store.On("GetSessionContext", "s1", session.DefaultContextMessages).Return("")
	store.On("AddMessage", "s1", "views?", mock.AnythingOfType("string"), "views.csv").Return()

	a, err := New(store)
	require.NoError(t, err)

	ans, err := a.Ask(context.Background(), Question{SessionID: "s1", Text: "views?", SourceRef: "views.csv"})
	require.NoError(t, err)

	assert.Equal(t, SourceFallback, ans.Source)
	assert.Empty(t, ans.Model)
	assert.Contains(t, ans.Text, "from views.csv")
	assert.Contains(t, ans.Text, "No data summary was provided.")
	assert.Contains(t, ans.Text, "Your question was: views?")
	store.AssertExpectations(t)
}

func TestAnalyst_FallbackOnModelError(t *testing.T) {
	store := newStore(t)
	llm := model.NewMockModel("mock-llm")
	llm.FailWith(errors.New("rate limited"))
	rec := &testutil.RecordingLogger{}

	a, err := New(store, func(o *Options) {
		o.Model = llm
		o.Logger = rec
	})
	require.NoError(t, err)

	ans, err := a.Ask(context.Background(), Question{SessionID: "s1", Text: "views?", DataSummary: "10 views"})
	require.NoError(t, err)

	assert.Equal(t, SourceFallback, ans.Source)
	assert.Contains(t, ans.Text, "10 views")
	assert.True(t, rec.Has("error", "LLM call failed"))
	assert.True(t, rec.Has("warn", "Falling back to template answer"))

	info, ok := store.GetSessionInfo("s1")
	require.True(t, ok)
	assert.Equal(t, 1, info.MessageCount)
}

func TestAnalyst_FallbackOnEmptyModelAnswer(t *testing.T) {
	store := newStore(t)
	llm := model.NewMockModel("mock-llm")
	a, err := New(store, func(o *Options) {
		o.Model = llm
		o.PromptTemplate = "{{.question}}"
	})
	require.NoError(t, err)
	llm.AddResponse("views?", "   ")

	ans, err := a.Ask(context.Background(), Question{SessionID: "s1", Text: "views?"})
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, ans.Source)
}

func TestAnalyst_FallbackOnTimeout(t *testing.T) {
	store := newStore(t)
	a, err := New(store, func(o *Options) {
		o.Model = blockingModel{}
		o.Timeout = 20 * time.Millisecond
	})
	require.NoError(t, err)

	ans, err := a.Ask(context.Background(), Question{SessionID: "s1", Text: "views?"})
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, ans.Source)

	_, ok := store.GetSessionInfo("s1")
	assert.True(t, ok)
}

func TestAnalyst_CancelledContextStoresNothing(t *testing.T) {
	t.Run("before call", func(t *testing.T) {
		store := &MockStore{}
		a, err := New(store)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = a.Ask(ctx, Question{SessionID: "s1", Text: "views?"})
		require.ErrorIs(t, err, context.Canceled)
		store.AssertNotCalled(t, "AddMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("during model call", func(t *testing.T) {
		store := newStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		a, err := New(store, func(o *Options) { o.Model = blockingModel{onCall: cancel} })
		require.NoError(t, err)

		_, err = a.Ask(ctx, Question{SessionID: "s1", Text: "views?"})
		require.ErrorIs(t, err, context.Canceled)

		_, ok := store.GetSessionInfo("s1")
		assert.False(t, ok)
	})
}

func TestNew_InvalidTemplate(t *testing.T) {
	_, err := New(newStore(t), func(o *Options) { o.PromptTemplate = "{{.broken" })
	require.Error(t, err)
}
