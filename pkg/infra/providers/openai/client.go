package openai

import (
	"context"
	"fmt"
	"sync"

	"github.com/NeuralTrust/ImageGuard/pkg/infra/providers"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"golang.org/x/sync/singleflight"
)

const DefaultModel = "gpt-4o-mini"

type client struct {
	clientPool *sync.Map
	sf         singleflight.Group
	baseURL    string
}

type Option func(*client)

// WithBaseURL points the client at an OpenAI compatible endpoint.
func WithBaseURL(url string) Option {
	return func(c *client) { c.baseURL = url }
}

func NewOpenaiClient(opts ...Option) providers.Client {
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
	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	openaiClient := c.getOrCreateClient(config.Credentials.ApiKey)

	var messages []openai.ChatCompletionMessageParamUnion
	if config.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(config.SystemPrompt))
	}

	content := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(providers.UserPrompt(config, prompt)),
	}
	if image != nil {
		content = append(content, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: image.DataURL(),
		}))
	}
	messages = append(messages, openai.UserMessage(content))

	params := openai.ChatCompletionNewParams{
		Model:    model,
		Messages: messages,
	}
	if config.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(config.MaxTokens))
	}
	if config.Temperature > 0 {
		params.Temperature = openai.Float(config.Temperature)
	}

	resp, err := openaiClient.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("OpenAI request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no completions returned")
	}

	return &providers.CompletionResponse{
		ID:       resp.ID,
		Model:    resp.Model,
		Response: resp.Choices[0].Message.Content,
		Usage: providers.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

func (c *client) newClient(apiKey string) *openai.Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if c.baseURL != "" {
		opts = append(opts, option.WithBaseURL(c.baseURL))
	}
	cli := openai.NewClient(opts...)
	return &cli
}

func (c *client) getOrCreateClient(apiKey string) *openai.Client {
	if v, ok := c.clientPool.Load(apiKey); ok {
		if cli, ok := v.(*openai.Client); ok {
			return cli
		}
	}
	v, _, _ := c.sf.Do(apiKey, func() (any, error) {
		if v2, ok := c.clientPool.Load(apiKey); ok {
			return v2, nil
		}
		cli := c.newClient(apiKey)
		c.clientPool.Store(apiKey, cli)
		return cli, nil
	})
	if cli, ok := v.(*openai.Client); ok {
		return cli
	}
	return c.newClient(apiKey)
}
