package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adept/internal/embedding"
)

func TestDocumentID(t *testing.T) {
	assert.Equal(t, "task-1", DocumentID("x", map[string]interface{}{"id": "task-1"}))
	assert.Equal(t, "42", DocumentID("x", map[string]interface{}{"id": 42}))

	hashed := DocumentID("hello", nil)
	assert.Len(t, hashed, 64)
	assert.Equal(t, hashed, DocumentID("hello", map[string]interface{}{"id": ""}))
	assert.Equal(t, hashed, DocumentID("hello", map[string]interface{}{"id": nil}))
	assert.NotEqual(t, hashed, DocumentID("hello!", nil))
}

func TestIngestAndQuery(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(&mockEngine{}, NewMemoryIndex())

	require.NoError(t, p.Ingest(ctx, "aaaa", map[string]interface{}{"id": "a", "source": "notes.md"}))
	require.NoError(t, p.Ingest(ctx, "bbbb", map[string]interface{}{"id": "b"}))
	require.NoError(t, p.Ingest(ctx, "aabb", map[string]interface{}{"id": "ab"}))

	docs, err := p.Query(ctx, "aaa", 2)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "aaaa", docs[0].Text)
	assert.Equal(t, "notes.md", docs[0].Source())
	assert.InDelta(t, 1.0, docs[0].Score, 1e-9)
	assert.Equal(t, "ab", docs[1].ID)
}

func TestQueryDefaultTopK(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(&mockEngine{}, NewMemoryIndex())
	for i := 0; i < 8; i++ {
		require.NoError(t, p.Ingest(ctx, fmt.Sprintf("doc %c", 'a'+i), nil))
	}

	docs, err := p.Query(ctx, "doc", 0)
	require.NoError(t, err)
	assert.Len(t, docs, DefaultTopK)

	p = NewProvider(&mockEngine{}, NewMemoryIndex(), WithTopK(3))
	require.NoError(t, p.Ingest(ctx, "one", nil))
	docs, err = p.Query(ctx, "one", -1)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestQueryIsDeterministic(t *testing.T) {
	ctx := context.Background()
	same := func(context.Context, string) ([]float32, error) { return []float32{1, 0}, nil }
	p := NewProvider(&mockEngine{EmbedFunc: same}, NewMemoryIndex())

	for _, id := range []string{"delta", "alpha", "charlie", "bravo"} {
		require.NoError(t, p.Ingest(ctx, "text "+id, map[string]interface{}{"id": id}))
	}

	for i := 0; i < 5; i++ {
		docs, err := p.Query(ctx, "anything", 3)
		require.NoError(t, err)
		ids := []string{docs[0].ID, docs[1].ID, docs[2].ID}
		assert.Equal(t, []string{"alpha", "bravo", "charlie"}, ids)
	}
}

func TestReingestOverwrites(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(&mockEngine{}, NewMemoryIndex())

	require.NoError(t, p.Ingest(ctx, "first version", map[string]interface{}{"id": "doc"}))
	require.NoError(t, p.Ingest(ctx, "second version", map[string]interface{}{"id": "doc"}))

	n, err := p.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	docs, err := p.Query(ctx, "version", 5)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "second version", docs[0].Text)
}

func TestIngestValidation(t *testing.T) {
	ctx := context.Background()
	engine := &mockEngine{}
	p := NewProvider(engine, NewMemoryIndex())

	err := p.Ingest(ctx, "text", map[string]interface{}{"tags": []string{"a"}})
	assert.ErrorIs(t, err, ErrRetrieval)
	assert.ErrorContains(t, err, "not a scalar")

	err = p.Ingest(ctx, "   ", nil)
	assert.ErrorIs(t, err, ErrRetrieval)

	_, err = p.Query(ctx, "", 5)
	assert.ErrorIs(t, err, ErrRetrieval)

	assert.Zero(t, engine.calls.Load())
}

func TestEmbeddingFailureIsRetrievalError(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(embedding.DisabledEngine{}, NewMemoryIndex())

	err := p.Ingest(ctx, "text", nil)
	assert.ErrorIs(t, err, ErrRetrieval)
	assert.ErrorIs(t, err, embedding.ErrDisabled)

	_, err = p.Query(ctx, "text", 5)
	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "query", rerr.Op)
}

func TestConcurrentIngestThenQuery(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(&mockEngine{}, NewMemoryIndex())

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("doc-%02d", i)
			assert.NoError(t, p.Ingest(ctx, "shared words "+id, map[string]interface{}{"id": id}))
		}(i)
	}

	// Readers run alongside writers and must only ever see whole entries.
	var readers sync.WaitGroup
	for i := 0; i < 4; i++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			docs, err := p.Query(ctx, "shared", n)
			assert.NoError(t, err)
			for _, d := range docs {
				assert.NotEmpty(t, d.Text)
			}
		}()
	}
	wg.Wait()
	readers.Wait()

	docs, err := p.Query(ctx, "shared words", n)
	require.NoError(t, err)
	require.Len(t, docs, n)

	seen := make(map[string]bool)
	for _, d := range docs {
		seen[d.ID] = true
	}
	assert.Len(t, seen, n)
}

func TestIngestBatch(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(&mockEngine{}, NewMemoryIndex(), WithConcurrency(3))

	docs := make([]Document, 10)
	for i := range docs {
		docs[i] = Document{Text: fmt.Sprintf("batch %d", i), Metadata: map[string]interface{}{"id": fmt.Sprintf("b%d", i)}}
	}
	require.NoError(t, p.IngestBatch(ctx, docs))

	n, err := p.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
}

func TestIngestBatchEmbedsInChunks(t *testing.T) {
	ctx := context.Background()
	engine := &mockEngine{}
	p := NewProvider(engine, NewMemoryIndex(), WithBatchSize(4))

	docs := make([]Document, 10)
	for i := range docs {
		docs[i] = Document{Text: fmt.Sprintf("chunk %d", i)}
	}
	require.NoError(t, p.IngestBatch(ctx, docs))

	assert.Equal(t, int64(3), engine.batches.Load())
	assert.Equal(t, int64(10), engine.calls.Load())

	n, err := p.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
}

func TestIngestBatchValidatesBeforeEmbedding(t *testing.T) {
	ctx := context.Background()
	engine := &mockEngine{}
	p := NewProvider(engine, NewMemoryIndex())

	err := p.IngestBatch(ctx, []Document{{Text: "fine"}, {Text: "  "}})
	assert.ErrorIs(t, err, ErrRetrieval)
	assert.ErrorContains(t, err, "document 1")
	assert.Zero(t, engine.batches.Load())

	n, err := p.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIngestBatchStopsOnError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("embedder down")
	engine := &mockEngine{EmbedFunc: func(ctx context.Context, text string) ([]float32, error) {
		if text == "bad" {
			return nil, boom
		}
		return letterVector(text), nil
	}}
	p := NewProvider(engine, NewMemoryIndex(), WithConcurrency(1))

	err := p.IngestBatch(ctx, []Document{{Text: "good"}, {Text: "bad"}, {Text: "later"}})
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, ErrRetrieval)
}
