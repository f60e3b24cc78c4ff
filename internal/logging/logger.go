// Package logging provides categorized logging for adept.
// Every category is a named zap logger derived from one process-wide base logger.
// Until SetLogger is called all categories discard their output.
package logging

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Category represents a log category/subsystem
type Category string

const (
	CategoryBoot       Category = "boot"       // Startup and wiring
	CategoryLLM        Category = "llm"        // Model backend calls
	CategoryExtract    Category = "extract"    // Structured output extraction
	CategoryEmbedding  Category = "embedding"  // Embedding engine
	CategoryRetrieval  Category = "retrieval"  // Retrieval index and context building
	CategoryGeneration Category = "generation" // Generation orchestration
	CategoryStore      Category = "store"      // Domain persistence
	CategoryAPI        Category = "api"        // MCP tools and CLI surface
)

// Logger is a category-scoped printf-style logger.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	mu       sync.RWMutex
	base     = zap.NewNop()
	disabled = make(map[Category]bool)
	loggers  = make(map[Category]*Logger)
)

// SetLogger installs the base zap logger. Cached category loggers are dropped.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	defer mu.Unlock()
	base = l
	loggers = make(map[Category]*Logger)
}

// Configure applies per-category toggles. Categories not present stay enabled.
func Configure(categories map[string]bool) {
	mu.Lock()
	defer mu.Unlock()
	disabled = make(map[Category]bool)
	for name, enabled := range categories {
		if !enabled {
			disabled[Category(name)] = true
		}
	}
	loggers = make(map[Category]*Logger)
}

// Base returns the installed zap logger.
func Base() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// IsCategoryEnabled reports whether a category has not been switched off.
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return !disabled[category]
}

// Get returns (or creates) the logger for the given category.
func Get(category Category) *Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	zl := zap.NewNop()
	if !disabled[category] {
		zl = base.Named(string(category))
	}
	l := &Logger{category: category, sugar: zl.Sugar()}
	loggers[category] = l
	return l
}

// With returns a child logger carrying the given key/value pairs.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{category: l.category, sugar: l.sugar.With(keysAndValues...)}
}

func (l *Logger) Debug(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// WithRequestID returns a category logger tagged with a correlation id.
func WithRequestID(category Category, requestID string) *Logger {
	return Get(category).With("req", requestID)
}

// Sync flushes the base logger.
func Sync() error {
	return Base().Sync()
}

// =============================================================================
// CATEGORY HELPERS
// =============================================================================

func Boot(format string, args ...interface{})      { Get(CategoryBoot).Info(format, args...) }
func BootWarn(format string, args ...interface{})  { Get(CategoryBoot).Warn(format, args...) }
func BootError(format string, args ...interface{}) { Get(CategoryBoot).Error(format, args...) }

func LLM(format string, args ...interface{})      { Get(CategoryLLM).Info(format, args...) }
func LLMDebug(format string, args ...interface{}) { Get(CategoryLLM).Debug(format, args...) }
func LLMError(format string, args ...interface{}) { Get(CategoryLLM).Error(format, args...) }

func ExtractDebug(format string, args ...interface{}) { Get(CategoryExtract).Debug(format, args...) }
func ExtractWarn(format string, args ...interface{})  { Get(CategoryExtract).Warn(format, args...) }

func Embedding(format string, args ...interface{})      { Get(CategoryEmbedding).Info(format, args...) }
func EmbeddingDebug(format string, args ...interface{}) { Get(CategoryEmbedding).Debug(format, args...) }
func EmbeddingError(format string, args ...interface{}) { Get(CategoryEmbedding).Error(format, args...) }

func Retrieval(format string, args ...interface{})      { Get(CategoryRetrieval).Info(format, args...) }
func RetrievalDebug(format string, args ...interface{}) { Get(CategoryRetrieval).Debug(format, args...) }
func RetrievalWarn(format string, args ...interface{})  { Get(CategoryRetrieval).Warn(format, args...) }

func Generation(format string, args ...interface{})      { Get(CategoryGeneration).Info(format, args...) }
func GenerationDebug(format string, args ...interface{}) { Get(CategoryGeneration).Debug(format, args...) }
func GenerationWarn(format string, args ...interface{})  { Get(CategoryGeneration).Warn(format, args...) }
func GenerationError(format string, args ...interface{}) { Get(CategoryGeneration).Error(format, args...) }

func Store(format string, args ...interface{})      { Get(CategoryStore).Info(format, args...) }
func StoreDebug(format string, args ...interface{}) { Get(CategoryStore).Debug(format, args...) }

func API(format string, args ...interface{})      { Get(CategoryAPI).Info(format, args...) }
func APIWarn(format string, args ...interface{})  { Get(CategoryAPI).Warn(format, args...) }
func APIError(format string, args ...interface{}) { Get(CategoryAPI).Error(format, args...) }

// =============================================================================
// TIMERS
// =============================================================================

// Timer measures the duration of one operation.
type Timer struct {
	category  Category
	operation string
	start     time.Time
}

// StartTimer starts timing an operation.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, operation: operation, start: time.Now()}
}

// Stop logs the elapsed time at debug level and returns it.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.operation, elapsed)
	return elapsed
}

// StopWithThreshold logs at warn level when the operation exceeded threshold.
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s slow: %v (threshold %v)", t.operation, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.operation, elapsed)
	}
	return elapsed
}

// String renders the timer for debugging.
func (t *Timer) String() string {
	return fmt.Sprintf("%s/%s@%s", t.category, t.operation, t.start.Format(time.RFC3339Nano))
}
