package retrieval

import (
	"context"
	"strings"
	"sync/atomic"
)

// mockEngine embeds text through EmbedFunc, defaulting to a letter histogram.
type mockEngine struct {
	EmbedFunc func(ctx context.Context, text string) ([]float32, error)
	calls     atomic.Int64
	batches   atomic.Int64
}

func (m *mockEngine) Embed(ctx context.Context, text string) ([]float32, error) {
	m.calls.Add(1)
	if m.EmbedFunc != nil {
		return m.EmbedFunc(ctx, text)
	}
	return letterVector(text), nil
}

func (m *mockEngine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.batches.Add(1)
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEngine) Dimensions() int { return 26 }
func (m *mockEngine) Name() string    { return "mock" }

func letterVector(text string) []float32 {
	vec := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			vec[r-'a']++
		}
	}
	return vec
}
