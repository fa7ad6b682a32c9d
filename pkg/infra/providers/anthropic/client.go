package anthropic

import (
	"context"
	"fmt"
	"sync"

	"github.com/NeuralTrust/ImageGuard/pkg/infra/providers"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	DefaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 1024
)

type client struct {
	clientPool *sync.Map
	baseURL    string
}

type Option func(*client)

func WithBaseURL(url string) Option {
	return func(c *client) { c.baseURL = url }
}

func NewAnthropicClient(opts ...Option) providers.Client {
	c := &client{clientPool: &sync.Map{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) Ask(
	ctx context.Context,
	config *providers.Config,
	prompt string,
	image *providers.Image,
) (*providers.CompletionResponse, error) {
	if config.Credentials.ApiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	anthropicClient := c.getOrCreateClient(config.Credentials.ApiKey)

	var blocks []anthropic.ContentBlockParamUnion
	if image != nil {
		blocks = append(blocks, anthropic.NewImageBlockBase64(image.MimeType, image.Base64()))
	}
	blocks = append(blocks, anthropic.NewTextBlock(providers.UserPrompt(config, prompt)))

	model := anthropic.Model(DefaultModel)
	if config.Model != "" {
		model = anthropic.Model(config.Model)
	}
	maxTokens := int64(defaultMaxTokens)
	if config.MaxTokens > 0 {
		maxTokens = int64(config.MaxTokens)
	}

	params := anthropic.MessageNewParams{
		Model:     model,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
		MaxTokens: maxTokens,
	}
	if config.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: config.SystemPrompt}}
	}
	if config.Temperature > 0 {
		params.Temperature = anthropic.Float(config.Temperature)
	}

	message, err := anthropicClient.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}

	var responseText string
	for _, content := range message.Content {
		if content.Type == "text" {
			responseText = content.Text
			break
		}
	}

	return &providers.CompletionResponse{
		ID:       message.ID,
		Model:    string(model),
		Response: responseText,
		Usage: providers.Usage{
			PromptTokens:     int(message.Usage.InputTokens),
			CompletionTokens: int(message.Usage.OutputTokens),
			TotalTokens:      int(message.Usage.InputTokens + message.Usage.OutputTokens),
		},
	}, nil
}

func (c *client) getOrCreateClient(apiKey string) anthropic.Client {
	if clientVal, ok := c.clientPool.Load(apiKey); ok {
		if cli, ok := clientVal.(anthropic.Client); ok {
			return cli
		}
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if c.baseURL != "" {
		opts = append(opts, option.WithBaseURL(c.baseURL))
	}
	newClient := anthropic.NewClient(opts...)
	c.clientPool.Store(apiKey, newClient)
	return newClient
}
