package reconstruct

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider using OpenAI chat completions.
// It is text-only: the screenshot is omitted from the prompt, which the
// reconstruction contract allows.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates an OpenAI provider.
func NewOpenAIProvider(model string) (*OpenAIProvider, error) {
	apiKey := os.Getenv("SITECLONE_OPENAI_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("SITECLONE_OPENAI_KEY or OPENAI_API_KEY environment variable required")
	}

	client := openai.NewClient(apiKey)

	if model == "" {
		model = "gpt-4o"
	}

	return &OpenAIProvider{
		client: client,
		model:  model,
	}, nil
}

// GenerateHTML asks OpenAI for a reconstructed HTML document.
func (p *OpenAIProvider) GenerateHTML(ctx context.Context, prompt Prompt) (string, error) {
	resp, err := p.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: p.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: prompt.System,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt.User,
				},
			},
		},
	)
	if err != nil {
		return "", classifyOpenAIErr(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response from openai", ErrMalformedOutput)
	}

	return resp.Choices[0].Message.Content, nil
}

func classifyOpenAIErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrModelTimeout, err)
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrModelAuth, err)
		case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusGatewayTimeout:
			return fmt.Errorf("%w: %v", ErrModelTimeout, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrModelRefused, err)
}
