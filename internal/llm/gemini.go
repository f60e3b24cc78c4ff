package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/genai"

	"adept/internal/extract"
	"adept/internal/logging"
	"adept/internal/types"
)

// GeminiConfig holds hosted generative API settings.
type GeminiConfig struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint.
	BaseURL string
	Timeout time.Duration
}

// DefaultGeminiConfig returns the default hosted model.
func DefaultGeminiConfig(apiKey string) GeminiConfig {
	return GeminiConfig{
		APIKey:  apiKey,
		Model:   "gemini-2.0-flash",
		Timeout: DefaultTimeout,
	}
}

var errNoAPIKey = errors.New("API key not configured")

// HostedGenerativeBackend calls the Gemini API through the genai SDK.
// The API has no separate system role here: system and user text are sent
// as one prompt.
type HostedGenerativeBackend struct {
	client  *genai.Client
	model   string
	initErr error
}

// NewHostedGenerativeBackend creates the hosted backend. A missing key or a
// client construction failure is kept and reported by every call, so
// selection itself never fails.
func NewHostedGenerativeBackend(ctx context.Context, cfg GeminiConfig) *HostedGenerativeBackend {
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiConfig("").Model
	}
	b := &HostedGenerativeBackend{model: cfg.Model}

	if strings.TrimSpace(cfg.APIKey) == "" {
		b.initErr = errNoAPIKey
		logging.Get(logging.CategoryLLM).Warn("[gemini] %v; every call will fail", errNoAPIKey)
		return b
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: newHTTPClient(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		b.initErr = err
		logging.LLMError("[gemini] failed to create client: %v", err)
		return b
	}
	b.client = client
	return b
}

// Name returns "gemini".
func (b *HostedGenerativeBackend) Name() string { return NameGemini }

// GenerateTasks extracts tasks from the fenced block of the reply.
func (b *HostedGenerativeBackend) GenerateTasks(ctx context.Context, prompt string) ([]types.GeneratedTask, error) {
	content, err := b.generate(ctx, OpGenerateTasks, singlePrompt(fencedTaskSystemPrompt, prompt))
	if err != nil {
		return nil, err
	}
	return extract.Tasks(content)
}

// Summarize returns a Markdown project summary.
func (b *HostedGenerativeBackend) Summarize(ctx context.Context, snapshot types.ProjectSnapshot, grounding string) (string, error) {
	return b.generate(ctx, OpSummarize, singlePrompt(summarySystemPrompt, summaryPrompt(snapshot, grounding)))
}

// AnswerQuestion returns a Markdown answer.
func (b *HostedGenerativeBackend) AnswerQuestion(ctx context.Context, snapshot types.ProjectSnapshot, question, grounding string) (string, error) {
	return b.generate(ctx, OpAnswerQuestion, singlePrompt(questionSystemPrompt, questionPrompt(snapshot, question, grounding)))
}

func (b *HostedGenerativeBackend) generate(ctx context.Context, op, prompt string) (string, error) {
	if b.initErr != nil {
		return "", newBackendError(NameGemini, op, b.initErr.Error(), nil)
	}

	timer := logging.StartTimer(logging.CategoryLLM, "gemini "+op)
	defer timer.Stop()
	logging.LLMDebug("[gemini] %s: model=%s prompt_len=%d", op, b.model, len(prompt))

	resp, err := b.client.Models.GenerateContent(ctx, b.model, genai.Text(prompt), nil)
	if err != nil {
		msg := "request failed"
		if ctxErr := ctx.Err(); ctxErr != nil {
			msg, err = "request cancelled", ctxErr
		}
		berr := newBackendError(NameGemini, op, msg, err)
		logging.LLMError("[gemini] %s: %v", op, berr)
		return "", berr
	}
	if resp == nil || len(resp.Candidates) == 0 {
		berr := newBackendError(NameGemini, op, "no candidates returned", nil)
		logging.LLMError("[gemini] %s: %v", op, berr)
		return "", berr
	}

	return strings.TrimSpace(resp.Text()), nil
}

