package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

const (
	defaultOllamaEndpoint = "http://localhost:11434"
	defaultOllamaModel    = "all-minilm:latest"

	// ollamaMaxBatch caps the inputs sent in one /api/embed request.
	ollamaMaxBatch = 64
	// ollamaErrSnippet bounds how much of an error body ends up in messages.
	ollamaErrSnippet = 512
)

// OllamaEngine embeds text through the /api/embed endpoint of an Ollama server.
// A batch is sent as one request per ollamaMaxBatch inputs.
type OllamaEngine struct {
	endpoint string
	model    string
	client   *http.Client
	dims     atomic.Int64
}

// NewOllamaEngine creates an Ollama engine. Empty arguments fall back to a
// local server and the all-minilm model.
func NewOllamaEngine(endpoint, model string) (*OllamaEngine, error) {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = defaultOllamaEndpoint
	}
	if strings.TrimSpace(model) == "" {
		model = defaultOllamaModel
	}
	return &OllamaEngine{
		endpoint: strings.TrimRight(endpoint, "/"),
		model:    model,
		client:   &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Embed embeds a single text.
func (e *OllamaEngine) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in order, chunking large batches.
func (e *OllamaEngine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += ollamaMaxBatch {
		end := min(start+ollamaMaxBatch, len(texts))
		vecs, err := e.embed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed texts %d-%d: %w", start, end-1, err)
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (e *OllamaEngine) embed(ctx context.Context, inputs []string) ([][]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: e.model, Input: inputs})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, ollamaErrSnippet))
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var result ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Embeddings) != len(inputs) {
		return nil, fmt.Errorf("ollama returned %d embeddings for %d inputs", len(result.Embeddings), len(inputs))
	}
	for i, vec := range result.Embeddings {
		if len(vec) == 0 {
			return nil, fmt.Errorf("ollama returned an empty embedding for input %d (model %s)", i, e.model)
		}
	}

	e.dims.Store(int64(len(result.Embeddings[0])))
	return result.Embeddings, nil
}

// Dimensions returns the size of the last embedding returned by the server.
func (e *OllamaEngine) Dimensions() int {
	return int(e.dims.Load())
}

// Name returns the engine name.
func (e *OllamaEngine) Name() string {
	return "ollama:" + e.model
}

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}
