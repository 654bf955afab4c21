package reconstruct

import (
	"context"
	"fmt"
)

// Prompt carries everything a provider may use to rebuild a page.
type Prompt struct {
	System string
	User   string

	// Screenshot is an optional PNG of the rendered page. Providers
	// without vision support ignore it; the request still succeeds.
	Screenshot []byte
}

// Provider is one generative backend capable of emitting an HTML document.
type Provider interface {
	// GenerateHTML returns the model's raw text reply for the prompt.
	// Errors are categorized against the package sentinels.
	GenerateHTML(ctx context.Context, p Prompt) (string, error)
}

// NewProvider creates a provider by name. Credentials are resolved from
// the environment at construction, so a missing key fails startup
// instead of the first request.
func NewProvider(name, model string) (Provider, error) {
	switch name {
	case "claude", "anthropic":
		return NewClaudeProvider(model)
	case "openai", "gpt":
		return NewOpenAIProvider(model)
	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: claude, openai)", name)
	}
}
