package embedding

import (
	"context"
	"fmt"
	"sync/atomic"

	"google.golang.org/genai"
)

// =============================================================================
// GOOGLE GENAI EMBEDDING ENGINE
// =============================================================================

// GenAIConfig configures the GenAI embedding engine.
type GenAIConfig struct {
	APIKey   string
	Model    string
	TaskType string
	// BaseURL overrides the API endpoint.
	BaseURL string
}

// GenAIEngine generates embeddings using Google's Gemini API.
type GenAIEngine struct {
	client   *genai.Client
	model    string
	taskType string
	dims     atomic.Int64
}

// NewGenAIEngine creates a new GenAI embedding engine.
func NewGenAIEngine(ctx context.Context, cfg GenAIConfig) (*GenAIEngine, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gemini-embedding-001"
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIEngine{
		client:   client,
		model:    cfg.Model,
		taskType: parseTaskType(cfg.TaskType),
	}, nil
}

// parseTaskType maps the configured task type (see
// https://ai.google.dev/gemini-api/docs/embeddings) to the API value.
func parseTaskType(taskType string) string {
	switch taskType {
	case "SEMANTIC_SIMILARITY", "RETRIEVAL_QUERY", "QUESTION_ANSWERING", "CLUSTERING", "CLASSIFICATION":
		return taskType
	default:
		return "RETRIEVAL_DOCUMENT"
	}
}

// Embed generates an embedding for a single text.
func (e *GenAIEngine) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts.
// GenAI has native batch support.
func (e *GenAIEngine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := e.client.Models.EmbedContent(ctx,
		e.model,
		contents,
		&genai.EmbedContentConfig{
			TaskType: e.taskType,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("GenAI embed failed: %w", err)
	}

	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("GenAI returned %d embeddings for %d texts", len(result.Embeddings), len(texts))
	}

	embeddings := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		if len(emb.Values) == 0 {
			return nil, fmt.Errorf("GenAI returned an empty embedding for text %d", i)
		}
		embeddings[i] = emb.Values
	}

	e.dims.Store(int64(len(embeddings[0])))
	return embeddings, nil
}

// Dimensions returns the size of the last embedding returned by the API.
func (e *GenAIEngine) Dimensions() int {
	return int(e.dims.Load())
}

// Name returns the engine name.
func (e *GenAIEngine) Name() string {
	return fmt.Sprintf("genai:%s", e.model)
}
