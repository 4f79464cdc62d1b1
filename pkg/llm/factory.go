package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Provider represents the LLM provider type
type Provider string

const (
	ProviderGateway Provider = "gateway"
	ProviderClaude  Provider = "claude"
	ProviderOpenAI  Provider = "openai"
)

// Settings selects and configures a provider.
type Settings struct {
	Provider Provider
	URL      string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// Create builds an LLM from explicit settings.
func Create(s Settings) (LLM, error) {
	switch s.Provider {
	case ProviderGateway, "":
		if s.URL == "" {
			return nil, fmt.Errorf("LLM gateway URL is required")
		}
		if s.APIKey == "" {
			return nil, fmt.Errorf("LLM gateway API key is required")
		}
		if s.Model == "" {
			return nil, fmt.Errorf("LLM gateway model is required")
		}
		return NewGateway(s.URL, s.APIKey, s.Model, s.Timeout), nil

	case ProviderClaude:
		if s.APIKey == "" {
			return nil, fmt.Errorf("Claude API key is required")
		}
		if s.Model != "" {
			return NewClaudeWithModel(s.APIKey, s.Model), nil
		}
		return NewClaude(s.APIKey), nil

	case ProviderOpenAI:
		if s.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		if s.Model != "" {
			return NewOpenAIWithModel(s.APIKey, s.Model), nil
		}
		return NewOpenAI(s.APIKey), nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s (supported: gateway, claude, openai)", s.Provider)
	}
}

// FromEnv fills unset fields of s from the environment. LLM_* variables apply
// to every provider; the vendor key variables are a fallback for claude and
// openai.
func FromEnv(s Settings) Settings {
	if s.Provider == "" {
		s.Provider = Provider(strings.ToLower(os.Getenv("LLM_PROVIDER")))
	}
	if s.URL == "" {
		s.URL = os.Getenv("LLM_API_URL")
	}
	if s.Model == "" {
		s.Model = os.Getenv("LLM_MODEL")
	}
	if s.APIKey == "" {
		s.APIKey = os.Getenv("LLM_API_KEY")
	}
	if s.APIKey == "" {
		switch s.Provider {
		case ProviderClaude:
			s.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		case ProviderOpenAI:
			s.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	return s
}

// GetAvailableProviders returns a list of available LLM providers
func GetAvailableProviders() []Provider {
	return []Provider{ProviderGateway, ProviderClaude, ProviderOpenAI}
}
