package anthropic_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NeuralTrust/ImageGuard/pkg/infra/providers"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/providers/anthropic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsk_MissingAPIKey(t *testing.T) {
	_, err := anthropic.NewAnthropicClient().Ask(context.Background(), &providers.Config{}, "prompt", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestAsk_SendsImageBlock(t *testing.T) {
	var captured struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		Messages  []struct {
			Content []map[string]any `json:"content"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-20250514",
			"content": [{"type": "text", "text": "YES, a knife is clearly visible."}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 20, "output_tokens": 8}
		}`))
	}))
	defer server.Close()

	client := anthropic.NewAnthropicClient(anthropic.WithBaseURL(server.URL))
	resp, err := client.Ask(context.Background(), &providers.Config{
		Credentials: providers.Credentials{ApiKey: "test-key"},
	}, "Is there a weapon?", &providers.Image{Data: []byte("jpeg"), MimeType: "image/jpeg"})
	require.NoError(t, err)

	assert.Equal(t, "msg_1", resp.ID)
	assert.Equal(t, "YES, a knife is clearly visible.", resp.Response)
	assert.Equal(t, 28, resp.Usage.TotalTokens)

	assert.Equal(t, anthropic.DefaultModel, captured.Model)
	assert.Equal(t, 1024, captured.MaxTokens)
	require.Len(t, captured.Messages, 1)
	require.Len(t, captured.Messages[0].Content, 2)
	assert.Equal(t, "image", captured.Messages[0].Content[0]["type"])
	assert.Equal(t, "text", captured.Messages[0].Content[1]["type"])
}
