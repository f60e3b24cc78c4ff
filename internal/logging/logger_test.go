package logging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func installObserver(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() {
		SetLogger(nil)
		Configure(nil)
	})
	return logs
}

func TestCategoriesAreNamedLoggers(t *testing.T) {
	logs := installObserver(t)

	LLM("calling %s", "local")
	RetrievalWarn("index empty")
	Get(CategoryStore).Error("boom %d", 1)

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "llm", entries[0].LoggerName)
	assert.Equal(t, "calling local", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "retrieval", entries[1].LoggerName)
	assert.Equal(t, "boom 1", entries[2].Message)
}

func TestConfigureDisablesCategory(t *testing.T) {
	logs := installObserver(t)
	Configure(map[string]bool{"embedding": false, "llm": true})

	Embedding("hidden")
	LLM("shown")

	assert.False(t, IsCategoryEnabled(CategoryEmbedding))
	assert.True(t, IsCategoryEnabled(CategoryGeneration))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "shown", logs.All()[0].Message)
}

func TestNopBeforeSetLogger(t *testing.T) {
	SetLogger(nil)
	// Must not panic and must not write anywhere.
	Generation("nothing to see")
	assert.NotNil(t, Get(CategoryGeneration))
}

func TestWithRequestIDAddsField(t *testing.T) {
	logs := installObserver(t)

	WithRequestID(CategoryAPI, "req-42").Info("handled")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-42", fields["req"])
}

func TestTimerThreshold(t *testing.T) {
	logs := installObserver(t)

	timer := StartTimer(CategoryLLM, "GenerateTasks")
	time.Sleep(2 * time.Millisecond)
	elapsed := timer.StopWithThreshold(time.Nanosecond)

	assert.Greater(t, elapsed, time.Duration(0))
	require.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}
