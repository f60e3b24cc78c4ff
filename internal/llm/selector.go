package llm

import (
	"context"
	"sync"

	"adept/internal/config"
	"adept/internal/logging"
)

// NewBackend maps the configured service name to an adapter. Unknown or
// empty names select NullBackend; this never fails.
func NewBackend(ctx context.Context, cfg config.LLMConfig) Backend {
	timeout := cfg.GetTimeout()

	switch cfg.NormalizedService() {
	case "ollama", NameLocal:
		return NewLocalChatBackend(LocalConfig{
			URL:     cfg.Ollama.URL,
			Model:   cfg.Ollama.Model,
			Timeout: timeout,
		})
	case NameOpenAI:
		return NewOpenAICompatibleBackend(OpenAIConfig{
			URL:     cfg.OpenAI.URL,
			Model:   cfg.OpenAI.Model,
			APIKey:  cfg.OpenAI.APIKey,
			Timeout: timeout,
		})
	case NameGemini:
		return NewHostedGenerativeBackend(ctx, GeminiConfig{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			BaseURL: cfg.Gemini.BaseURL,
			Timeout: timeout,
		})
	default:
		return NullBackend{}
	}
}

// Selector resolves the configured backend once and hands out the same
// instance afterwards. The zero value is not usable; use NewSelector.
type Selector struct {
	cfg     config.LLMConfig
	once    sync.Once
	backend Backend
}

// NewSelector creates a selector for cfg. Nothing is constructed until Backend is called.
func NewSelector(cfg config.LLMConfig) *Selector {
	return &Selector{cfg: cfg}
}

// Backend returns the process-wide adapter, building it on first use.
func (s *Selector) Backend(ctx context.Context) Backend {
	s.once.Do(func() {
		s.backend = NewBackend(context.WithoutCancel(ctx), s.cfg)
		logging.LLM("selected %s backend (service=%q)", s.backend.Name(), s.cfg.Service)
	})
	return s.backend
}
