package retrieval

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadFile reads a document from disk for ingestion. HTML files are reduced
// to their visible text. The absolute path becomes the document id, so
// re-ingesting a changed file replaces the earlier version.
func LoadFile(path string) (Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Document{}, fmt.Errorf("resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}

	text := string(data)
	if isHTML(abs) {
		text, err = TextFromHTML(bytes.NewReader(data))
		if err != nil {
			return Document{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	return Document{
		Text: text,
		Metadata: map[string]interface{}{
			"id":     abs,
			"source": filepath.Base(abs),
		},
	}, nil
}

func isHTML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}
