// Package retrieval keeps a semantic index of project documents and returns
// the snippets most relevant to a query.
package retrieval

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"adept/internal/config"
	"adept/internal/embedding"
	"adept/internal/logging"
	"adept/internal/types"
)

const (
	// DefaultTopK is used when a query asks for zero or fewer results.
	DefaultTopK = 5
	// DefaultBatchSize is the number of documents embedded per EmbedBatch call.
	DefaultBatchSize = 16
)

// Document is one unit of ingestion.
type Document struct {
	Text     string
	Metadata map[string]interface{}
}

// Provider embeds documents into an Index and answers similarity queries.
// It is safe for concurrent use.
type Provider struct {
	engine      embedding.Engine
	index       Index
	topK        int
	concurrency int
	batchSize   int
}

// Option configures a Provider.
type Option func(*Provider)

// WithTopK sets the default number of results.
func WithTopK(k int) Option {
	return func(p *Provider) {
		if k > 0 {
			p.topK = k
		}
	}
}

// WithConcurrency bounds the number of parallel embeds in IngestBatch.
func WithConcurrency(n int) Option {
	return func(p *Provider) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithBatchSize sets how many documents IngestBatch embeds per engine call.
func WithBatchSize(n int) Option {
	return func(p *Provider) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// NewProvider creates a provider over engine and index.
func NewProvider(engine embedding.Engine, index Index, opts ...Option) *Provider {
	p := &Provider{
		engine:      engine,
		index:       index,
		topK:        DefaultTopK,
		concurrency: 4,
		batchSize:   DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Open builds the embedding engine and index described by cfg.
func Open(ctx context.Context, embCfg config.EmbeddingConfig, cfg config.RetrievalConfig) (*Provider, error) {
	engine, err := embedding.NewEngine(ctx, embCfg)
	if err != nil {
		return nil, err
	}

	var index Index
	switch cfg.Index {
	case "sqlite":
		idx, err := OpenSQLiteIndex(cfg.Path)
		if err != nil {
			return nil, err
		}
		index = idx
	default:
		index = NewMemoryIndex()
	}

	return NewProvider(engine, index, WithTopK(cfg.TopK), WithConcurrency(cfg.IngestConcurrency)), nil
}

// Close releases the index.
func (p *Provider) Close() error {
	return p.index.Close()
}

// Ingest embeds text and stores it under DocumentID(text, metadata).
// Re-ingesting the same id overwrites the previous entry.
func (p *Provider) Ingest(ctx context.Context, text string, metadata map[string]interface{}) error {
	entry, err := prepare(text, metadata)
	if err != nil {
		return opError("ingest", err)
	}

	vector, err := p.engine.Embed(ctx, entry.Text)
	if err != nil {
		logging.RetrievalWarn("embedding failed for %s: %v", entry.ID, err)
		return opError("ingest", fmt.Errorf("embed %s: %w", entry.ID, err))
	}
	entry.Vector = vector

	if err := p.index.Upsert(ctx, entry); err != nil {
		return opError("ingest", err)
	}

	logging.RetrievalDebug("ingested %s (%d chars, dim=%d)", entry.ID, len(entry.Text), len(vector))
	return nil
}

// IngestBatch validates every document, then embeds them in chunks of the
// batch size with bounded concurrency. Nothing is embedded when a document is
// invalid. The first embedding or index failure cancels the remaining chunks
// and is returned; chunks already stored stay stored.
func (p *Provider) IngestBatch(ctx context.Context, docs []Document) error {
	timer := logging.StartTimer(logging.CategoryRetrieval, "IngestBatch")
	defer timer.Stop()

	entries := make([]Entry, len(docs))
	for i, doc := range docs {
		entry, err := prepare(doc.Text, doc.Metadata)
		if err != nil {
			return opError("ingest", fmt.Errorf("document %d: %w", i, err))
		}
		entries[i] = entry
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for start := 0; start < len(entries); start += p.batchSize {
		chunk := entries[start:min(start+p.batchSize, len(entries))]
		g.Go(func() error {
			return p.embedAndStore(gctx, chunk)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	logging.Retrieval("ingested %d documents", len(docs))
	return nil
}

func (p *Provider) embedAndStore(ctx context.Context, chunk []Entry) error {
	texts := make([]string, len(chunk))
	for i, e := range chunk {
		texts[i] = e.Text
	}

	vectors, err := p.engine.EmbedBatch(ctx, texts)
	if err != nil {
		logging.RetrievalWarn("batch embedding failed for %d documents starting at %s: %v", len(chunk), chunk[0].ID, err)
		return opError("ingest", fmt.Errorf("embed batch: %w", err))
	}
	if len(vectors) != len(chunk) {
		return opError("ingest", fmt.Errorf("engine returned %d vectors for %d documents", len(vectors), len(chunk)))
	}

	for i, entry := range chunk {
		entry.Vector = vectors[i]
		if err := p.index.Upsert(ctx, entry); err != nil {
			return opError("ingest", err)
		}
	}
	return nil
}

// Query returns the topK stored documents most similar to text, best first.
// topK <= 0 uses the provider default.
func (p *Provider) Query(ctx context.Context, text string, topK int) ([]types.RetrievedDocument, error) {
	if strings.TrimSpace(text) == "" {
		return nil, opError("query", errors.New("empty query"))
	}
	if topK <= 0 {
		topK = p.topK
	}

	vector, err := p.engine.Embed(ctx, text)
	if err != nil {
		logging.RetrievalWarn("query embedding failed: %v", err)
		return nil, opError("query", fmt.Errorf("embed query: %w", err))
	}

	docs, err := p.index.Search(ctx, vector, topK)
	if err != nil {
		return nil, opError("query", err)
	}

	logging.RetrievalDebug("query returned %d documents (k=%d)", len(docs), topK)
	return docs, nil
}

// Len returns the number of indexed documents.
func (p *Provider) Len(ctx context.Context) (int, error) {
	n, err := p.index.Len(ctx)
	if err != nil {
		return 0, opError("len", err)
	}
	return n, nil
}

// DocumentID returns metadata["id"] when present and non-empty, otherwise
// the hex SHA-256 of text.
func DocumentID(text string, metadata map[string]interface{}) string {
	if v, ok := metadata["id"]; ok && v != nil {
		if id := fmt.Sprint(v); id != "" {
			return id
		}
	}
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func prepare(text string, metadata map[string]interface{}) (Entry, error) {
	if strings.TrimSpace(text) == "" {
		return Entry{}, errors.New("empty document")
	}
	for k, v := range metadata {
		if !isScalar(v) {
			return Entry{}, fmt.Errorf("metadata %q: value of type %T is not a scalar", k, v)
		}
	}
	return Entry{
		ID:       DocumentID(text, metadata),
		Text:     text,
		Metadata: copyMetadata(metadata),
	}, nil
}

func isScalar(v interface{}) bool {
	switch v.(type) {
	case nil, string, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}
