package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func envMap(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestEnvOverrides_LLM(t *testing.T) {
	t.Run("original service variable names", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides(envMap(map[string]string{
			"LLM_SERVICE":    "ollama",
			"OLLAMA_API_URL": "http://ollama:11434",
			"OLLAMA_MODEL":   "llama3",
		}))

		assert.Equal(t, "ollama", cfg.LLM.Service)
		assert.Equal(t, "http://ollama:11434", cfg.LLM.Ollama.URL)
		assert.Equal(t, "llama3", cfg.LLM.Ollama.Model)
		assert.Equal(t, "http://ollama:11434", cfg.Embedding.OllamaEndpoint)
	})

	t.Run("empty values do not clobber file settings", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.LLM.OpenAI.APIKey = "from-file"
		cfg.applyEnvOverrides(envMap(map[string]string{"OPENAI_API_KEY": ""}))

		assert.Equal(t, "from-file", cfg.LLM.OpenAI.APIKey)
	})

	t.Run("explicit embedding key wins over gemini key", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Embedding.GenAIAPIKey = "embed-key"
		cfg.applyEnvOverrides(envMap(map[string]string{"GEMINI_API_KEY": "gem-key"}))

		assert.Equal(t, "gem-key", cfg.LLM.Gemini.APIKey)
		assert.Equal(t, "embed-key", cfg.Embedding.GenAIAPIKey)
	})
}

func TestEnvOverrides_Retrieval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.applyEnvOverrides(envMap(map[string]string{
		"EMBEDDING_PROVIDER": "genai",
		"EMBEDDING_MODEL":    "text-embedding-004",
		"RETRIEVAL_INDEX":    "sqlite",
		"RETRIEVAL_PATH":     "/tmp/idx.db",
		"DATABASE_PATH":      "/tmp/adept.db",
		"LOG_LEVEL":          "debug",
	}))

	assert.Equal(t, "genai", cfg.Embedding.Provider)
	assert.Equal(t, "text-embedding-004", cfg.Embedding.GenAIModel)
	assert.Equal(t, "sqlite", cfg.Retrieval.Index)
	assert.Equal(t, "/tmp/idx.db", cfg.Retrieval.Path)
	assert.Equal(t, "/tmp/adept.db", cfg.Store.DatabasePath)
	assert.Equal(t, "debug", cfg.Logging.Level)
}
