package config

import (
	"strings"
	"time"
)

// LLMConfig is the BackendConfig: it selects the model backend adapter and
// carries the connection parameters of every variant. Exactly one variant is
// active per process.
type LLMConfig struct {
	// Service: "ollama" (alias "local"), "openai", "gemini"; anything else selects the null backend
	Service string `yaml:"service"`
	Timeout string `yaml:"timeout"`

	Ollama OllamaConfig `yaml:"ollama"`
	OpenAI OpenAIConfig `yaml:"openai"`
	Gemini GeminiConfig `yaml:"gemini"`
}

// OllamaConfig holds the local chat-completion endpoint settings.
type OllamaConfig struct {
	URL   string `yaml:"url"`
	Model string `yaml:"model"`
}

// OpenAIConfig holds OpenAI-compatible endpoint settings.
type OpenAIConfig struct {
	URL    string `yaml:"url"`
	Model  string `yaml:"model"`
	APIKey string `yaml:"api_key"`
}

// GeminiConfig holds hosted generative API settings.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
	// BaseURL overrides the API endpoint (tests, proxies)
	BaseURL string `yaml:"base_url"`
}

// NormalizedService returns the lower-cased, trimmed service name.
func (c LLMConfig) NormalizedService() string {
	return strings.ToLower(strings.TrimSpace(c.Service))
}

// GetTimeout returns the transport timeout, 120s when unset or invalid.
func (c LLMConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}
