package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is used when no --config flag is given.
const DefaultConfigPath = "adept.yaml"

// Config holds all adept configuration.
type Config struct {
	Name string `yaml:"name"`

	// Model backend selection (BackendConfig)
	LLM LLMConfig `yaml:"llm"`

	// Embeddings used by the retrieval index
	Embedding EmbeddingConfig `yaml:"embedding"`

	// Retrieval index
	Retrieval RetrievalConfig `yaml:"retrieval"`

	// Domain persistence
	Store StoreConfig `yaml:"store"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// EmbeddingConfig configures the embedding engine.
type EmbeddingConfig struct {
	// Provider: "ollama", "genai" or "none"
	Provider string `yaml:"provider"`

	OllamaEndpoint string `yaml:"ollama_endpoint"`
	OllamaModel    string `yaml:"ollama_model"`

	GenAIAPIKey string `yaml:"genai_api_key"`
	GenAIModel  string `yaml:"genai_model"`

	// TaskType for GenAI: "SEMANTIC_SIMILARITY", "RETRIEVAL_QUERY", "RETRIEVAL_DOCUMENT"
	TaskType string `yaml:"task_type"`
}

// RetrievalConfig configures the retrieval context provider.
type RetrievalConfig struct {
	// Index: "memory" (process lifetime) or "sqlite" (local file)
	Index string `yaml:"index"`
	Path  string `yaml:"path"`
	TopK  int    `yaml:"top_k"`

	IngestConcurrency int `yaml:"ingest_concurrency"`
}

// StoreConfig configures domain persistence.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name: "adept",

		LLM: LLMConfig{
			Service: "",
			Timeout: "120s",
			Ollama: OllamaConfig{
				URL:   "http://127.0.0.1:11434",
				Model: "gemma3:1b",
			},
			OpenAI: OpenAIConfig{
				URL:    "http://localhost:8012/v1/",
				Model:  "gemma-3-1b-it-Q2_K.gguf",
				APIKey: "llama",
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
		},

		Embedding: EmbeddingConfig{
			Provider:       "ollama",
			OllamaEndpoint: "http://localhost:11434",
			OllamaModel:    "all-minilm:latest",
			GenAIModel:     "gemini-embedding-001",
			TaskType:       "RETRIEVAL_DOCUMENT",
		},

		Retrieval: RetrievalConfig{
			Index:             "memory",
			Path:              "data/retrieval.db",
			TopK:              5,
			IngestConcurrency: 4,
		},

		Store: StoreConfig{
			DatabasePath: "data/adept.db",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration from a YAML file and applies environment overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	set(&c.LLM.Service, "LLM_SERVICE")
	set(&c.LLM.Timeout, "LLM_TIMEOUT")
	set(&c.LLM.Ollama.URL, "OLLAMA_API_URL")
	set(&c.LLM.Ollama.Model, "OLLAMA_MODEL")
	set(&c.LLM.OpenAI.URL, "OPENAI_API_URL")
	set(&c.LLM.OpenAI.Model, "OPENAI_MODEL")
	set(&c.LLM.OpenAI.APIKey, "OPENAI_API_KEY")
	set(&c.LLM.Gemini.APIKey, "GEMINI_API_KEY")
	set(&c.LLM.Gemini.Model, "GEMINI_MODEL")

	set(&c.Embedding.Provider, "EMBEDDING_PROVIDER")
	if v := getenv("EMBEDDING_MODEL"); v != "" {
		c.Embedding.OllamaModel = v
		c.Embedding.GenAIModel = v
	}
	// The embedding endpoint follows the Ollama chat endpoint unless set explicitly.
	set(&c.Embedding.OllamaEndpoint, "OLLAMA_API_URL")
	if c.Embedding.GenAIAPIKey == "" {
		c.Embedding.GenAIAPIKey = c.LLM.Gemini.APIKey
	}

	set(&c.Retrieval.Index, "RETRIEVAL_INDEX")
	set(&c.Retrieval.Path, "RETRIEVAL_PATH")
	set(&c.Store.DatabasePath, "DATABASE_PATH")
	set(&c.Logging.Level, "LOG_LEVEL")
}

// Validate rejects values that cannot be used. An unknown LLM service is not
// an error: it selects the null backend.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.LLM.Timeout); c.LLM.Timeout != "" && err != nil {
		return fmt.Errorf("invalid llm.timeout %q: %w", c.LLM.Timeout, err)
	}
	if c.Retrieval.TopK < 0 {
		return fmt.Errorf("retrieval.top_k must be >= 0, got %d", c.Retrieval.TopK)
	}
	if c.Retrieval.IngestConcurrency < 0 {
		return fmt.Errorf("retrieval.ingest_concurrency must be >= 0, got %d", c.Retrieval.IngestConcurrency)
	}
	switch c.Retrieval.Index {
	case "", "memory", "sqlite":
	default:
		return fmt.Errorf("unknown retrieval.index %q (use memory or sqlite)", c.Retrieval.Index)
	}
	return nil
}

// GetLLMTimeout returns the LLM timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	return c.LLM.GetTimeout()
}
