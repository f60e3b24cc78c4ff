package retrieval

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"adept/internal/logging"
	"adept/internal/types"
)

const documentsSchema = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	text TEXT NOT NULL,
	metadata TEXT NOT NULL DEFAULT '{}',
	embedding TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteIndex persists entries in a local SQLite file. Vectors are stored as
// JSON arrays and ranked in process.
type SQLiteIndex struct {
	db *sql.DB
}

// OpenSQLiteIndex opens (or creates) the index at path. ":memory:" is accepted.
func OpenSQLiteIndex(path string) (*SQLiteIndex, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create index directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	// One connection: serializes writers and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy_timeout: %w", err)
	}
	if _, err := db.Exec(documentsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create documents table: %w", err)
	}

	logging.Retrieval("opened sqlite index at %s", path)
	return &SQLiteIndex{db: db}, nil
}

func (s *SQLiteIndex) Upsert(ctx context.Context, entry Entry) error {
	embeddingJSON, err := json.Marshal(entry.Vector)
	if err != nil {
		return fmt.Errorf("failed to serialize embedding: %w", err)
	}
	meta := entry.Metadata
	if meta == nil {
		meta = map[string]interface{}{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to serialize metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO documents (id, text, metadata, embedding, updated_at) VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)",
		entry.ID, entry.Text, string(metaJSON), string(embeddingJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to store document %s: %w", entry.ID, err)
	}
	return nil
}

func (s *SQLiteIndex) Search(ctx context.Context, vector []float32, k int) ([]types.RetrievedDocument, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, text, metadata, embedding FROM documents")
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	skipped := 0
	for rows.Next() {
		var e Entry
		var metaJSON, embeddingJSON string
		if err := rows.Scan(&e.ID, &e.Text, &metaJSON, &embeddingJSON); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		if err := json.Unmarshal([]byte(embeddingJSON), &e.Vector); err != nil {
			skipped++
			continue
		}
		if metaJSON != "" {
			meta, err := decodeMetadata(metaJSON)
			if err != nil {
				skipped++
				continue
			}
			e.Metadata = meta
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read documents: %w", err)
	}
	if skipped > 0 {
		logging.RetrievalWarn("skipped %d undecodable documents", skipped)
	}

	return rank(entries, vector, k), nil
}

// decodeMetadata keeps numbers as json.Number so integer ids survive intact.
func decodeMetadata(raw string) (map[string]interface{}, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var meta map[string]interface{}
	if err := dec.Decode(&meta); err != nil {
		return nil, err
	}
	return meta, nil
}

func (s *SQLiteIndex) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return n, nil
}

func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}
