package retrieval

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteIndexPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "retrieval.db")

	idx, err := OpenSQLiteIndex(path)
	require.NoError(t, err)
	p := NewProvider(&mockEngine{}, idx)

	require.NoError(t, p.Ingest(ctx, "database migration plan", map[string]interface{}{"id": "m1", "kind": "task", "points": 3}))
	require.NoError(t, p.Ingest(ctx, "frontend polish", map[string]interface{}{"id": "f1"}))
	require.NoError(t, p.Ingest(ctx, "database migration plan v2", map[string]interface{}{"id": "m1", "kind": "task"}))
	require.NoError(t, p.Close())

	idx, err = OpenSQLiteIndex(path)
	require.NoError(t, err)
	p = NewProvider(&mockEngine{}, idx)
	defer p.Close()

	n, err := p.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	docs, err := p.Query(ctx, "database migration", 1)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "m1", docs[0].ID)
	assert.Equal(t, "database migration plan v2", docs[0].Text)
	assert.Equal(t, "task", docs[0].Metadata["kind"])
	assert.NotContains(t, docs[0].Metadata, "points")
}

func TestSQLiteIndexMatchesMemoryRanking(t *testing.T) {
	ctx := context.Background()
	idx, err := OpenSQLiteIndex(":memory:")
	require.NoError(t, err)
	defer idx.Close()

	mem := NewProvider(&mockEngine{}, NewMemoryIndex())
	disk := NewProvider(&mockEngine{}, idx)

	texts := []string{"alpha beta", "gamma delta", "beta beta", "epsilon", "alpha alpha"}
	for _, text := range texts {
		require.NoError(t, mem.Ingest(ctx, text, nil))
		require.NoError(t, disk.Ingest(ctx, text, nil))
	}

	want, err := mem.Query(ctx, "alpha beta", 3)
	require.NoError(t, err)
	got, err := disk.Query(ctx, "alpha beta", 3)
	require.NoError(t, err)

	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.InDelta(t, want[i].Score, got[i].Score, 1e-6)
	}
}

func TestSQLiteIndexKeepsLargeIntegers(t *testing.T) {
	ctx := context.Background()
	idx, err := OpenSQLiteIndex(":memory:")
	require.NoError(t, err)
	p := NewProvider(&mockEngine{}, idx)
	defer p.Close()

	const ticket int64 = 9007199254740993 // 2^53 + 1
	require.NoError(t, p.Ingest(ctx, "release checklist", map[string]interface{}{"id": "r1", "ticket": ticket, "ratio": 0.5}))

	docs, err := p.Query(ctx, "release", 1)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, json.Number("9007199254740993"), docs[0].Metadata["ticket"])
	assert.Equal(t, json.Number("0.5"), docs[0].Metadata["ratio"])
}
