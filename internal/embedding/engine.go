// Package embedding turns text into vectors for the retrieval index.
// Supports a local Ollama server and Google GenAI; "none" disables embeddings.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"adept/internal/config"
	"adept/internal/logging"
)

// =============================================================================
// EMBEDDING ENGINE INTERFACE
// =============================================================================

// Engine generates vector embeddings for text.
type Engine interface {
	// Embed generates embeddings for a single text
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, in order
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the dimensionality of embeddings, 0 if not yet known
	Dimensions() int

	// Name returns the engine name
	Name() string
}

// ErrDisabled is returned by the engine of the "none" provider.
var ErrDisabled = errors.New("embeddings disabled")

// =============================================================================
// FACTORY
// =============================================================================

// NewEngine creates an embedding engine based on configuration.
func NewEngine(ctx context.Context, cfg config.EmbeddingConfig) (Engine, error) {
	timer := logging.StartTimer(logging.CategoryEmbedding, "NewEngine")
	defer timer.Stop()

	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	logging.Embedding("Creating embedding engine with provider=%s", provider)

	var engine Engine
	var err error

	switch provider {
	case "ollama", "":
		engine, err = NewOllamaEngine(cfg.OllamaEndpoint, cfg.OllamaModel)
	case "genai":
		engine, err = NewGenAIEngine(ctx, GenAIConfig{
			APIKey:   cfg.GenAIAPIKey,
			Model:    cfg.GenAIModel,
			TaskType: cfg.TaskType,
		})
	case "none":
		engine = DisabledEngine{}
	default:
		err = fmt.Errorf("unsupported embedding provider: %s (use 'ollama', 'genai' or 'none')", cfg.Provider)
	}

	if err != nil {
		logging.EmbeddingError("Failed to create embedding engine: %v", err)
		return nil, err
	}

	logging.Embedding("Embedding engine created: name=%s", engine.Name())
	return engine, nil
}

// DisabledEngine fails every call with ErrDisabled.
type DisabledEngine struct{}

func (DisabledEngine) Embed(context.Context, string) ([]float32, error) { return nil, ErrDisabled }

func (DisabledEngine) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, ErrDisabled
}

func (DisabledEngine) Dimensions() int { return 0 }
func (DisabledEngine) Name() string    { return "none" }

// =============================================================================
// COSINE SIMILARITY UTILITY
// =============================================================================

// CosineSimilarity calculates the cosine similarity between two vectors.
// Returns a value between -1 and 1; zero-magnitude vectors score 0.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vectors must have the same length: %d != %d", len(a), len(b))
	}

	var dotProduct, aMagnitude, bMagnitude float64
	for i := 0; i < len(a); i++ {
		dotProduct += float64(a[i]) * float64(b[i])
		aMagnitude += float64(a[i]) * float64(a[i])
		bMagnitude += float64(b[i]) * float64(b[i])
	}

	if aMagnitude == 0 || bMagnitude == 0 {
		return 0, nil
	}

	return dotProduct / (math.Sqrt(aMagnitude) * math.Sqrt(bMagnitude)), nil
}

// SimilarityResult represents a similarity search result.
type SimilarityResult struct {
	Index      int
	Similarity float64
}

// FindTopK returns the K corpus entries most similar to query, best first.
// Equal scores keep corpus order. Vectors of the wrong dimension are skipped.
func FindTopK(query []float32, corpus [][]float32, k int) []SimilarityResult {
	if k <= 0 {
		k = 10
	}

	results := make([]SimilarityResult, 0, len(corpus))
	skipped := 0
	for i, vec := range corpus {
		similarity, err := CosineSimilarity(query, vec)
		if err != nil {
			skipped++
			continue
		}
		results = append(results, SimilarityResult{Index: i, Similarity: similarity})
	}

	if skipped > 0 {
		logging.Get(logging.CategoryEmbedding).Warn("FindTopK: skipped %d vectors due to dimension mismatch", skipped)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > k {
		results = results[:k]
	}

	logging.EmbeddingDebug("FindTopK: %d of %d vectors returned (k=%d)", len(results), len(corpus), k)
	return results
}
