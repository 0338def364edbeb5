package analyst

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/tubeanalyst/core"
	"github.com/hupe1980/tubeanalyst/internal/util"
	"github.com/hupe1980/tubeanalyst/logging"
	"github.com/hupe1980/tubeanalyst/model"
	"github.com/hupe1980/tubeanalyst/session"
)

// ErrEmptyQuestion is returned when a Question carries no text.
var ErrEmptyQuestion = errors.New("question text is empty")

var errNoModel = errors.New("no model configured")

// Answer sources.
const (
	SourceModel    = "model"
	SourceFallback = "fallback"
)

const (
	defaultInstructions = "You are a YouTube analytics assistant. Answer questions about channel " +
		"and video metrics concisely, using only the data provided. Say so when the data " +
		"does not contain the answer."

	defaultPromptTemplate = `{{if .history}}Conversation so far:
{{.history}}

{{end}}{{if .data_summary}}Data{{if .source_ref}} ({{.source_ref}}){{end}}:
{{.data_summary}}

{{end}}Question: {{.question}}`

	defaultFallbackTemplate = `The analysis model is unavailable right now, so here is the data I have{{if .source_ref}} from {{.source_ref}}{{end}}:
{{default "No data summary was provided." .data_summary}}

Your question was: {{.question}}`
)

// Question is a single user request.
type Question struct {
	SessionID   string `json:"session_id"`
	Text        string `json:"question"`
	SourceRef   string `json:"source_ref,omitempty"`   // e.g. the uploaded file name
	DataSummary string `json:"data_summary,omitempty"` // pre-computed, opaque to the analyst
}

// Answer is the reply to a Question.
type Answer struct {
	SessionID string `json:"session_id"`
	Text      string `json:"answer"`
	Source    string `json:"source"`          // SourceModel or SourceFallback
	Model     string `json:"model,omitempty"` // empty for fallback answers
}

// Options configures an Analyst.
type Options struct {
	// Model generates answers. A nil Model makes every answer a fallback.
	Model  model.Model
	Logger logging.Logger
	// ContextMessages is how many previous messages are folded into the prompt.
	ContextMessages int
	// Timeout bounds a single model call. Zero disables the bound.
	Timeout          time.Duration
	Instructions     string
	PromptTemplate   string
	FallbackTemplate string
}

// Analyst couples a model with a session store.
type Analyst struct {
	store           core.SessionStore
	model           model.Model
	logger          logging.Logger
	contextMessages int
	timeout         time.Duration
	instructions    string
	prompt          *util.Template
	fallback        *util.Template
}

// New creates an Analyst over store. It fails only when a template does not parse.
func New(store core.SessionStore, optFns ...func(o *Options)) (*Analyst, error) {
	opts := Options{
		Logger:           logging.NoOpLogger{},
		ContextMessages:  session.DefaultContextMessages,
		Timeout:          30 * time.Second,
		Instructions:     defaultInstructions,
		PromptTemplate:   defaultPromptTemplate,
		FallbackTemplate: defaultFallbackTemplate,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	prompt, err := util.ParseTemplate("prompt", opts.PromptTemplate)
	if err != nil {
		return nil, err
	}
	fallback, err := util.ParseTemplate("fallback", opts.FallbackTemplate)
	if err != nil {
		return nil, err
	}

	return &Analyst{
		store:           store,
		model:           opts.Model,
		logger:          opts.Logger,
		contextMessages: opts.ContextMessages,
		timeout:         opts.Timeout,
		instructions:    opts.Instructions,
		prompt:          prompt,
		fallback:        fallback,
	}, nil
}

// Ask answers q and records the exchange in q.SessionID. A cancelled ctx
// aborts the request without touching the session.
func (a *Analyst) Ask(ctx context.Context, q Question) (*Answer, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, ErrEmptyQuestion
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	state := map[string]any{
		"question":     q.Text,
		"history":      a.store.GetSessionContext(q.SessionID, a.contextMessages),
		"data_summary": q.DataSummary,
		"source_ref":   q.SourceRef,
	}

	answer := &Answer{SessionID: q.SessionID}
	text, modelName, err := a.generate(ctx, state)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !errors.Is(err, errNoModel) {
			a.logger.Warn("Falling back to template answer", "session_id", q.SessionID, "error", err.Error())
		}
		text, err = a.fallback.Render(state)
		if err != nil {
			return nil, err
		}
		answer.Source = SourceFallback
	} else {
		answer.Source = SourceModel
		answer.Model = modelName
	}
	answer.Text = text

	a.store.AddMessage(q.SessionID, q.Text, answer.Text, q.SourceRef)
	return answer, nil
}

// generate renders the prompt and asks the model. Any error means the caller
// should fall back.
func (a *Analyst) generate(ctx context.Context, state map[string]any) (string, string, error) {
	if a.model == nil {
		return "", "", errNoModel
	}

	prompt, err := a.prompt.Render(state)
	if err != nil {
		return "", "", err
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	name := a.model.Info().Name
	start := time.Now()
	resp, err := model.Collect(ctx, a.model, model.Request{
		Instructions: a.instructions,
		Contents:     []core.Content{core.NewTextContent(core.RoleUser, prompt)},
	})
	logging.LLMCall(a.logger, name, time.Since(start), err == nil, err)
	if err != nil {
		return "", "", err
	}

	text := strings.TrimSpace(resp.Content.Text())
	if text == "" {
		return "", "", fmt.Errorf("model %s returned an empty answer", name)
	}
	return text, name, nil
}
