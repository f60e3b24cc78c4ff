package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	"adept/internal/extract"
	"adept/internal/logging"
	"adept/internal/types"
)

// OpenAIConfig holds OpenAI-compatible endpoint settings.
type OpenAIConfig struct {
	URL     string
	Model   string
	APIKey  string
	Timeout time.Duration
}

// DefaultOpenAIConfig points at a local llama.cpp server.
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		URL:     "http://localhost:8012/v1/",
		Model:   "gemma-3-1b-it-Q2_K.gguf",
		APIKey:  "llama",
		Timeout: DefaultTimeout,
	}
}

// OpenAICompatibleBackend talks to any /chat/completions endpoint.
// The system prompt demands a fenced JSON array.
type OpenAICompatibleBackend struct {
	url        string
	model      string
	apiKey     string
	httpClient *http.Client
}

type openAIRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
}

type openAIResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewOpenAICompatibleBackend creates an OpenAI-compatible backend.
func NewOpenAICompatibleBackend(cfg OpenAIConfig) *OpenAICompatibleBackend {
	def := DefaultOpenAIConfig()
	if cfg.URL == "" {
		cfg.URL = def.URL
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	return &OpenAICompatibleBackend{
		url:        cfg.URL,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		httpClient: newHTTPClient(cfg.Timeout),
	}
}

// Name returns "openai".
func (b *OpenAICompatibleBackend) Name() string { return NameOpenAI }

// GenerateTasks extracts tasks from the fenced block of the first choice.
func (b *OpenAICompatibleBackend) GenerateTasks(ctx context.Context, prompt string) ([]types.GeneratedTask, error) {
	content, err := b.complete(ctx, OpGenerateTasks, fencedTaskSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	return extract.Tasks(content)
}

// Summarize returns a Markdown project summary.
func (b *OpenAICompatibleBackend) Summarize(ctx context.Context, snapshot types.ProjectSnapshot, grounding string) (string, error) {
	return b.complete(ctx, OpSummarize, summarySystemPrompt, summaryPrompt(snapshot, grounding))
}

// AnswerQuestion returns a Markdown answer.
func (b *OpenAICompatibleBackend) AnswerQuestion(ctx context.Context, snapshot types.ProjectSnapshot, question, grounding string) (string, error) {
	return b.complete(ctx, OpAnswerQuestion, questionSystemPrompt, questionPrompt(snapshot, question, grounding))
}

func (b *OpenAICompatibleBackend) complete(ctx context.Context, op, system, user string) (string, error) {
	timer := logging.StartTimer(logging.CategoryLLM, "openai "+op)
	defer timer.Stop()
	logging.LLMDebug("[openai] %s: model=%s system_len=%d user_len=%d", op, b.model, len(system), len(user))

	reqBody := openAIRequest{
		Model: b.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.1,
	}

	headers := map[string]string{}
	if b.apiKey != "" {
		headers["Authorization"] = "Bearer " + b.apiKey
	}

	call := jsonCall{backend: NameOpenAI, op: op, url: joinURL(b.url, "chat/completions"), headers: headers}
	var resp openAIResponse
	if err := call.post(ctx, b.httpClient, reqBody, &resp); err != nil {
		logging.LLMError("[openai] %s: %v", op, err)
		return "", err
	}
	if resp.Error != nil {
		err := newBackendError(NameOpenAI, op, "API error: "+resp.Error.Message, nil)
		logging.LLMError("[openai] %s: %v", op, err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		err := newBackendError(NameOpenAI, op, "no completion returned", nil)
		logging.LLMError("[openai] %s: %v", op, err)
		return "", err
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
