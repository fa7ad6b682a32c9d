package bedrock_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/NeuralTrust/ImageGuard/pkg/infra/providers"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/providers/bedrock"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRuntime struct {
	input *bedrockruntime.InvokeModelInput
	body  string
	err   error
}

func (f *fakeRuntime) InvokeModel(
	_ context.Context,
	params *bedrockruntime.InvokeModelInput,
	_ ...func(*bedrockruntime.Options),
) (*bedrockruntime.InvokeModelOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: []byte(f.body)}, nil
}

func TestAsk_ClaudeMessages(t *testing.T) {
	rt := &fakeRuntime{body: `{"id":"msg_b","content":[{"type":"text","text":"PROBABLY a cigarette"}],"usage":{"input_tokens":5,"output_tokens":3}}`}
	client := bedrock.NewBedrockClient(bedrock.WithRuntime(rt))

	resp, err := client.Ask(context.Background(), &providers.Config{SystemPrompt: "moderator"},
		"Is anyone smoking?", &providers.Image{Data: []byte("jpg"), MimeType: "image/jpeg"})
	require.NoError(t, err)
	assert.Equal(t, "PROBABLY a cigarette", resp.Response)
	assert.Equal(t, 8, resp.Usage.TotalTokens)
	assert.Equal(t, bedrock.DefaultModel, *rt.input.ModelId)

	var sent bedrock.Request
	require.NoError(t, json.Unmarshal(rt.input.Body, &sent))
	assert.Equal(t, "bedrock-2023-05-31", sent.AnthropicVersion)
	assert.Equal(t, 1024, sent.MaxTokens)
	assert.Equal(t, "moderator", sent.System)
	require.Len(t, sent.Messages, 1)
	require.Len(t, sent.Messages[0].Content, 2)
	assert.Equal(t, "image", sent.Messages[0].Content[0].Type)
	assert.Equal(t, "image/jpeg", sent.Messages[0].Content[0].Source.MediaType)
	assert.Equal(t, "Is anyone smoking?", sent.Messages[0].Content[1].Text)
}

func TestAsk_RejectsNonClaudeModel(t *testing.T) {
	client := bedrock.NewBedrockClient(bedrock.WithRuntime(&fakeRuntime{}))
	_, err := client.Ask(context.Background(), &providers.Config{Model: "amazon.titan-text-express-v1"}, "p", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not accept image input")
}

func TestAsk_InvokeError(t *testing.T) {
	client := bedrock.NewBedrockClient(bedrock.WithRuntime(&fakeRuntime{err: errors.New("throttled")}))
	_, err := client.Ask(context.Background(), &providers.Config{}, "p", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}
