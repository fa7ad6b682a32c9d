package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/NeuralTrust/ImageGuard/pkg/infra/providers"
	"golang.org/x/sync/singleflight"
	"google.golang.org/genai"
)

const (
	DefaultModel = "gemini-2.5-flash"
	roleUser     = "user"
)

type client struct {
	clientPool *sync.Map
	sf         singleflight.Group
}

func NewGeminiClient() providers.Client {
	return &client{clientPool: &sync.Map{}}
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

	genaiClient, err := c.getOrCreateClient(ctx, config.Credentials.ApiKey)
	if err != nil {
		return nil, err
	}

	parts := []*genai.Part{{Text: providers.UserPrompt(config, prompt)}}
	if image != nil {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: image.MimeType, Data: image.Data},
		})
	}

	genConfig := &genai.GenerateContentConfig{}
	if config.SystemPrompt != "" {
		genConfig.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: config.SystemPrompt}},
		}
	}
	if config.Temperature > 0 {
		t := float32(config.Temperature)
		genConfig.Temperature = &t
	}
	if config.MaxTokens > 0 {
		genConfig.MaxOutputTokens = int32(config.MaxTokens) //nolint:gosec
	}

	result, err := genaiClient.Models.GenerateContent(
		ctx,
		model,
		[]*genai.Content{{Role: roleUser, Parts: parts}},
		genConfig,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	resp := &providers.CompletionResponse{
		ID:       fmt.Sprintf("gemini-%d", time.Now().UnixNano()),
		Model:    model,
		Response: strings.TrimSpace(result.Text()),
	}
	if result.UsageMetadata != nil {
		resp.Usage = providers.Usage{
			PromptTokens:     int(result.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(result.UsageMetadata.TotalTokenCount),
		}
	}
	return resp, nil
}

func (c *client) getOrCreateClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if v, ok := c.clientPool.Load(apiKey); ok {
		if cli, ok := v.(*genai.Client); ok {
			return cli, nil
		}
	}
	v, err, _ := c.sf.Do(apiKey, func() (any, error) {
		if v2, ok := c.clientPool.Load(apiKey); ok {
			return v2, nil
		}
		cli, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		c.clientPool.Store(apiKey, cli)
		return cli, nil
	})
	if err != nil {
		return nil, err
	}
	cli, ok := v.(*genai.Client)
	if !ok {
		return nil, fmt.Errorf("invalid client type in pool")
	}
	return cli, nil
}
