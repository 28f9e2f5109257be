package llm

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterClient calls any OpenRouter-hosted chat model through the
// OpenAI-compatible API.
type OpenRouterClient struct {
	cli   *openai.Client
	model string
}

// NewOpenRouterClient creates a client for the given model id. If apiKey is
// empty, it falls back to LLM_API_KEY then OPENROUTER_API_KEY env vars.
func NewOpenRouterClient(apiKey, model string) (*OpenRouterClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("LLM_API_KEY")
	}
	if apiKey == "" {
		apiKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("llm: openrouter api key is not set")
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = openRouterBaseURL
	if model == "" {
		model = "anthropic/claude-3.5-sonnet"
	}
	return &OpenRouterClient{cli: openai.NewClientWithConfig(cfg), model: model}, nil
}

func (c *OpenRouterClient) Name() string { return "OpenRouter:" + c.model }
func (c *OpenRouterClient) Close() error { return nil }

func (c *OpenRouterClient) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	stage := StageFrom(ctx)
	log.Printf("LLM request (%s): %d bytes via %s", stage, len(prompt), c.Name())

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	resp, err := c.cli.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classifyOpenAIErr(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// classifyOpenAIErr maps go-openai errors onto the client error taxonomy.
func classifyOpenAIErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrTimeout, err)
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusBadRequest:
			return NewPermanentError(errors.Join(ErrUnavailable, err))
		}
	}
	return errors.Join(ErrUnavailable, err)
}
