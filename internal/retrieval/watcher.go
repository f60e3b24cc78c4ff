package retrieval

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"adept/internal/logging"
)

// IngestFunc indexes one document.
type IngestFunc func(ctx context.Context, text string, metadata map[string]interface{}) error

// Watcher re-ingests files when they are created or written. Rapid saves of
// the same file are collapsed into one ingestion.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	ingest      IngestFunc
	files       map[string]bool // explicitly watched files; empty means every file in the dirs
	pending     map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	ingested    int
}

// NewWatcher watches paths (files or directories) and hands changed files to ingest.
func NewWatcher(ingest IngestFunc, paths ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:     fw,
		ingest:      ingest,
		files:       make(map[string]bool),
		pending:     make(map[string]time.Time),
		debounceDur: 300 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			fw.Close()
			return nil, err
		}
		dir := abs
		if !info.IsDir() {
			// Editors replace files on save; watch the parent directory.
			w.files[abs] = true
			dir = filepath.Dir(abs)
		}
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Start begins watching. It does not block.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	logging.Retrieval("watching %v", w.watcher.WatchList())
	go w.run(ctx)
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.watcher.Close(); err != nil {
		logging.RetrievalWarn("closing watcher: %v", err)
	}
}

// Ingested returns how many files were re-ingested so far.
func (w *Watcher) Ingested() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ingested
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.RetrievalWarn("watcher error: %v", err)
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.files) > 0 && !w.files[event.Name] {
		return
	}
	logging.RetrievalDebug("%s changed (%s)", event.Name, event.Op)
	w.pending[event.Name] = time.Now()
}

// flush ingests files whose last event is older than the debounce window.
func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var ready []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounceDur {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			continue
		}
		doc, err := LoadFile(path)
		if err != nil {
			logging.RetrievalWarn("reading %s: %v", path, err)
			continue
		}
		if err := w.ingest(ctx, doc.Text, doc.Metadata); err != nil {
			logging.RetrievalWarn("re-ingesting %s failed: %v", path, err)
			continue
		}
		w.mu.Lock()
		w.ingested++
		w.mu.Unlock()
		logging.Retrieval("re-ingested %s", path)
	}
}
