package retrieval

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(plain, []byte("# Launch\nShip it."), 0644))
	page := filepath.Join(dir, "brief.HTML")
	require.NoError(t, os.WriteFile(page, []byte("<html><body><h1>Spec</h1><script>x()</script><p>Details</p></body></html>"), 0644))

	doc, err := LoadFile(plain)
	require.NoError(t, err)
	assert.Equal(t, "# Launch\nShip it.", doc.Text)
	assert.Equal(t, plain, doc.Metadata["id"])
	assert.Equal(t, "notes.md", doc.Metadata["source"])

	doc, err = LoadFile(page)
	require.NoError(t, err)
	assert.Equal(t, "Spec\nDetails", doc.Text)
	assert.NotContains(t, doc.Text, "x()")
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}
