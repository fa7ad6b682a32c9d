package nudity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/httpx"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/providers"
)

const (
	OpenAIModerationURL    = "https://api.openai.com/v1/moderations"
	DefaultModerationModel = "omni-moderation-latest"
	defaultOpenAIMinScore  = 0.5
)

var sexualCategories = []string{"sexual", "sexual/minors"}

type moderationInput struct {
	Type     string    `json:"type"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type moderationRequest struct {
	Input []moderationInput `json:"input"`
	Model string            `json:"model,omitempty"`
}

type moderationResult struct {
	Flagged        bool               `json:"flagged"`
	Categories     map[string]bool    `json:"categories"`
	CategoryScores map[string]float64 `json:"category_scores"`
}

type moderationResponse struct {
	ID      string             `json:"id"`
	Model   string             `json:"model"`
	Results []moderationResult `json:"results"`
}

type openaiBackend struct {
	client httpx.Client
	apiKey string
	url    string
	model  string
}

func NewOpenAIBackend(client httpx.Client, apiKey, url, model string) Backend {
	if url == "" {
		url = OpenAIModerationURL
	}
	if model == "" {
		model = DefaultModerationModel
	}
	return &openaiBackend{client: client, apiKey: apiKey, url: url, model: model}
}

func (b *openaiBackend) Name() string {
	return BackendOpenAI
}

func (b *openaiBackend) DefaultMinScore() float64 {
	return defaultOpenAIMinScore
}

func (b *openaiBackend) Classify(ctx context.Context, image *providers.Image) (*Verdict, error) {
	payload, err := json.Marshal(moderationRequest{
		Input: []moderationInput{{Type: "image_url", ImageURL: &imageURL{URL: image.DataURL()}}},
		Model: b.model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal moderation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("moderation request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAI API returned error: %s", string(body))
	}

	var parsed moderationResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal moderation response: %w", err)
	}
	if len(parsed.Results) == 0 {
		return nil, fmt.Errorf("moderation response has no results")
	}

	result := parsed.Results[0]
	verdict := &Verdict{}
	for _, category := range sexualCategories {
		if result.Categories[category] {
			verdict.Flagged = true
		}
		if score, ok := result.CategoryScores[category]; ok {
			verdict.Detections = append(verdict.Detections, moderation.NewDetection(category, score, nil))
		}
	}
	return verdict, nil
}
