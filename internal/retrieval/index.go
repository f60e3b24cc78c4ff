package retrieval

import (
	"context"
	"sort"
	"sync"

	"adept/internal/embedding"
	"adept/internal/types"
)

// Entry is one embedded document as stored in an Index.
type Entry struct {
	ID       string
	Text     string
	Metadata map[string]interface{}
	Vector   []float32
}

// Index stores embedded documents and ranks them against a query vector.
// Implementations must be safe for concurrent Upsert and Search.
type Index interface {
	// Upsert stores the entry, replacing any entry with the same ID.
	Upsert(ctx context.Context, entry Entry) error
	// Search returns the k entries most similar to vector, best first.
	Search(ctx context.Context, vector []float32, k int) ([]types.RetrievedDocument, error)
	// Len returns the number of stored entries.
	Len(ctx context.Context) (int, error)
	Close() error
}

// rank orders entries by cosine similarity to vector. Ties are broken by
// ascending ID so identical index state always yields identical results.
func rank(entries []Entry, vector []float32, k int) []types.RetrievedDocument {
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })

	corpus := make([][]float32, len(entries))
	for i, e := range entries {
		corpus[i] = e.Vector
	}

	hits := embedding.FindTopK(vector, corpus, k)
	docs := make([]types.RetrievedDocument, len(hits))
	for i, hit := range hits {
		e := entries[hit.Index]
		docs[i] = types.RetrievedDocument{
			ID:       e.ID,
			Text:     e.Text,
			Metadata: copyMetadata(e.Metadata),
			Score:    hit.Similarity,
		}
	}
	return docs
}

func copyMetadata(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// MemoryIndex keeps entries for the lifetime of the process.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{entries: make(map[string]Entry)}
}

func (m *MemoryIndex) Upsert(_ context.Context, entry Entry) error {
	entry.Metadata = copyMetadata(entry.Metadata)
	entry.Vector = append([]float32(nil), entry.Vector...)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ID] = entry
	return nil
}

func (m *MemoryIndex) Search(_ context.Context, vector []float32, k int) ([]types.RetrievedDocument, error) {
	m.mu.RLock()
	entries := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	return rank(entries, vector, k), nil
}

func (m *MemoryIndex) Len(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries), nil
}

func (m *MemoryIndex) Close() error { return nil }
