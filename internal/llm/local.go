package llm

import (
	"context"
	"net/http"
	"time"

	"adept/internal/extract"
	"adept/internal/logging"
	"adept/internal/types"
)

// DefaultTimeout bounds every backend call when no timeout is configured.
const DefaultTimeout = 120 * time.Second

// LocalConfig holds the local chat server (Ollama) settings.
type LocalConfig struct {
	URL     string
	Model   string
	Timeout time.Duration
}

// DefaultLocalConfig returns the settings of a stock local install.
func DefaultLocalConfig() LocalConfig {
	return LocalConfig{
		URL:     "http://127.0.0.1:11434",
		Model:   "gemma3:1b",
		Timeout: DefaultTimeout,
	}
}

// LocalChatBackend talks to a local Ollama-style /api/chat endpoint.
// Task generation uses the server's JSON mode.
type LocalChatBackend struct {
	url        string
	model      string
	httpClient *http.Client
}

type localChatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
}

type localChatResponse struct {
	Model   string      `json:"model"`
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error,omitempty"`
}

// NewLocalChatBackend creates a local chat backend.
func NewLocalChatBackend(cfg LocalConfig) *LocalChatBackend {
	def := DefaultLocalConfig()
	if cfg.URL == "" {
		cfg.URL = def.URL
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	return &LocalChatBackend{
		url:        cfg.URL,
		model:      cfg.Model,
		httpClient: newHTTPClient(cfg.Timeout),
	}
}

// Name returns "local".
func (b *LocalChatBackend) Name() string { return NameLocal }

// GenerateTasks asks for a JSON-mode reply and extracts tasks from it.
func (b *LocalChatBackend) GenerateTasks(ctx context.Context, prompt string) ([]types.GeneratedTask, error) {
	content, err := b.chat(ctx, OpGenerateTasks, localTaskSystemPrompt, prompt, "json")
	if err != nil {
		return nil, err
	}
	return extract.Tasks(content)
}

// Summarize returns a Markdown project summary.
func (b *LocalChatBackend) Summarize(ctx context.Context, snapshot types.ProjectSnapshot, grounding string) (string, error) {
	return b.chat(ctx, OpSummarize, summarySystemPrompt, summaryPrompt(snapshot, grounding), "")
}

// AnswerQuestion returns a Markdown answer.
func (b *LocalChatBackend) AnswerQuestion(ctx context.Context, snapshot types.ProjectSnapshot, question, grounding string) (string, error) {
	return b.chat(ctx, OpAnswerQuestion, questionSystemPrompt, questionPrompt(snapshot, question, grounding), "")
}

func (b *LocalChatBackend) chat(ctx context.Context, op, system, user, format string) (string, error) {
	timer := logging.StartTimer(logging.CategoryLLM, "local "+op)
	defer timer.Stop()
	logging.LLMDebug("[local] %s: model=%s system_len=%d user_len=%d", op, b.model, len(system), len(user))

	reqBody := localChatRequest{
		Model: b.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream: false,
		Format: format,
	}

	call := jsonCall{backend: NameLocal, op: op, url: joinURL(b.url, "/api/chat")}
	var resp localChatResponse
	if err := call.post(ctx, b.httpClient, reqBody, &resp); err != nil {
		logging.LLMError("[local] %s: %v", op, err)
		return "", err
	}
	if resp.Error != "" {
		err := newBackendError(NameLocal, op, "server error: "+resp.Error, nil)
		logging.LLMError("[local] %s: %v", op, err)
		return "", err
	}

	return resp.Message.Content, nil
}
