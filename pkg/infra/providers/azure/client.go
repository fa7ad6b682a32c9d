package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/httpx"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/providers"
)

const (
	defaultAPIVersion = "2024-02-15-preview"
	cognitiveScope    = "https://cognitiveservices.azure.com/.default"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type client struct {
	httpClient httpx.Client
	credential azcore.TokenCredential
}

type Option func(*client)

// WithTokenCredential replaces the default Azure credential chain used when
// UseIdentity is set.
func WithTokenCredential(cred azcore.TokenCredential) Option {
	return func(c *client) { c.credential = cred }
}

func NewAzureClient(httpClient httpx.Client, opts ...Option) providers.Client {
	c := &client{httpClient: httpClient}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ask calls an Azure OpenAI chat deployment. config.Model is the deployment
// name. Authentication uses the api-key header unless Azure.UseIdentity is
// set, in which case a bearer token comes from the Azure credential chain.
func (c *client) Ask(
	ctx context.Context,
	config *providers.Config,
	prompt string,
	image *providers.Image,
) (*providers.CompletionResponse, error) {
	azureCfg := config.Credentials.Azure
	if azureCfg == nil {
		return nil, fmt.Errorf("azure configuration is required")
	}
	if azureCfg.Endpoint == "" {
		return nil, fmt.Errorf("azure endpoint is required")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("model (deployment ID) is required")
	}

	var messages []chatMessage
	if config.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: config.SystemPrompt})
	}
	parts := []contentPart{{Type: "text", Text: providers.UserPrompt(config, prompt)}}
	if image != nil {
		parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURL{URL: image.DataURL()}})
	}
	messages = append(messages, chatMessage{Role: "user", Content: parts})

	reqBody := map[string]any{"messages": messages}
	if config.Temperature > 0 {
		reqBody["temperature"] = config.Temperature
	}
	if config.MaxTokens > 0 {
		reqBody["max_tokens"] = config.MaxTokens
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	apiVersion := defaultAPIVersion
	if azureCfg.ApiVersion != "" {
		apiVersion = azureCfg.ApiVersion
	}
	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimSuffix(azureCfg.Endpoint, "/"), config.Model, apiVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if azureCfg.UseIdentity {
		token, err := c.token(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		if config.Credentials.ApiKey == "" {
			return nil, fmt.Errorf("API key is required")
		}
		req.Header.Set("api-key", config.Credentials.ApiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 status: %d\n%s", resp.StatusCode, string(respBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("no completions returned")
	}

	return &providers.CompletionResponse{
		ID:       parsed.ID,
		Model:    config.Model,
		Response: parsed.Choices[0].Message.Content,
		Usage: providers.Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		},
	}, nil
}

func (c *client) token(ctx context.Context) (string, error) {
	cred := c.credential
	if cred == nil {
		defaultCred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return "", fmt.Errorf("failed to create credential: %w", err)
		}
		cred = defaultCred
	}
	token, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{cognitiveScope}})
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}
	return token.Token, nil
}
