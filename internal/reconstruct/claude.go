package reconstruct

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ClaudeProvider implements Provider using Anthropic's Claude. Claude is
// multimodal, so the screenshot is attached as a base64 image block.
type ClaudeProvider struct {
	client *anthropic.Client
	model  string
}

// NewClaudeProvider creates a Claude provider.
func NewClaudeProvider(model string) (*ClaudeProvider, error) {
	apiKey := os.Getenv("SITECLONE_ANTHROPIC_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("SITECLONE_ANTHROPIC_KEY or ANTHROPIC_API_KEY environment variable required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	if model == "" {
		model = string(anthropic.ModelClaudeSonnet4_20250514)
	}

	return &ClaudeProvider{
		client: &client,
		model:  model,
	}, nil
}

// GenerateHTML asks Claude for a reconstructed HTML document.
func (p *ClaudeProvider) GenerateHTML(ctx context.Context, prompt Prompt) (string, error) {
	content := []anthropic.ContentBlockParamUnion{
		anthropic.NewTextBlock(prompt.User),
	}
	if len(prompt.Screenshot) > 0 {
		encoded := base64.StdEncoding.EncodeToString(prompt.Screenshot)
		content = append(content,
			anthropic.NewImageBlockBase64("image/png", encoded),
			anthropic.NewTextBlock("This is the rendered screenshot of the page you must recreate."),
		)
	}

	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 8192,
		System: []anthropic.TextBlockParam{
			{Text: prompt.System},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(content...),
		},
	})
	if err != nil {
		return "", classifyClaudeErr(err)
	}

	if string(resp.StopReason) == "refusal" {
		return "", fmt.Errorf("%w: claude stopped with refusal", ErrModelRefused)
	}

	var responseText string
	for _, block := range resp.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}
	if responseText == "" {
		return "", fmt.Errorf("%w: empty response from claude", ErrMalformedOutput)
	}

	return responseText, nil
}

func classifyClaudeErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrModelTimeout, err)
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrModelAuth, err)
		case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusGatewayTimeout:
			return fmt.Errorf("%w: %v", ErrModelTimeout, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrModelRefused, err)
}
