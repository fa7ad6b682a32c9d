package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/NeuralTrust/ImageGuard/pkg/infra/providers"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	stsTypes "github.com/aws/aws-sdk-go-v2/service/sts/types"
)

const (
	ModelPrefixAnthropicClaude = "anthropic.claude"
	DefaultModel               = "anthropic.claude-3-5-sonnet-20240620-v1:0"
	anthropicVersion           = "bedrock-2023-05-31"
	defaultRegion              = "us-east-1"
	defaultMaxTokens           = 1024
)

// Runtime is the part of the bedrock runtime client the provider calls.
type Runtime interface {
	InvokeModel(
		ctx context.Context,
		params *bedrockruntime.InvokeModelInput,
		optFns ...func(*bedrockruntime.Options),
	) (*bedrockruntime.InvokeModelOutput, error)
}

type Request struct {
	AnthropicVersion string           `json:"anthropic_version"`
	MaxTokens        int              `json:"max_tokens"`
	Temperature      float64          `json:"temperature,omitempty"`
	System           string           `json:"system,omitempty"`
	Messages         []RequestMessage `json:"messages"`
}

type RequestMessage struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

type ContentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *ImageSource `json:"source,omitempty"`
}

type ImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type Response struct {
	ID      string `json:"id"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type client struct {
	clientPool *sync.Map
	runtime    Runtime
}

type Option func(*client)

// WithRuntime pins the runtime client instead of building one per
// credential set.
func WithRuntime(rt Runtime) Option {
	return func(c *client) { c.runtime = rt }
}

func NewBedrockClient(opts ...Option) providers.Client {
	c := &client{clientPool: &sync.Map{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) Ask(
	ctx context.Context,
	cfg *providers.Config,
	prompt string,
	image *providers.Image,
) (*providers.CompletionResponse, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	if !isClaudeModel(model) {
		return nil, fmt.Errorf("model %s does not accept image input", model)
	}

	runtime, err := c.getOrCreateClient(ctx, cfg.Credentials)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bedrock client: %w", err)
	}

	body, err := json.Marshal(prepareRequest(cfg, prompt, image))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := runtime.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(model),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke model: %w", err)
	}

	var parsed Response
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	var text string
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}

	id := parsed.ID
	if id == "" {
		id = fmt.Sprintf("bedrock-%d", time.Now().UnixNano())
	}
	return &providers.CompletionResponse{
		ID:       id,
		Model:    model,
		Response: text,
		Usage: providers.Usage{
			PromptTokens:     parsed.Usage.InputTokens,
			CompletionTokens: parsed.Usage.OutputTokens,
			TotalTokens:      parsed.Usage.InputTokens + parsed.Usage.OutputTokens,
		},
	}, nil
}

func prepareRequest(cfg *providers.Config, prompt string, image *providers.Image) *Request {
	var content []ContentBlock
	if image != nil {
		content = append(content, ContentBlock{
			Type: "image",
			Source: &ImageSource{
				Type:      "base64",
				MediaType: image.MimeType,
				Data:      image.Base64(),
			},
		})
	}
	content = append(content, ContentBlock{Type: "text", Text: providers.UserPrompt(cfg, prompt)})

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Request{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        maxTokens,
		Temperature:      cfg.Temperature,
		System:           cfg.SystemPrompt,
		Messages:         []RequestMessage{{Role: "user", Content: content}},
	}
}

func (c *client) getOrCreateClient(ctx context.Context, credentials providers.Credentials) (Runtime, error) {
	if c.runtime != nil {
		return c.runtime, nil
	}
	clientKey := buildClientKey(credentials)
	if clientVal, ok := c.clientPool.Load(clientKey); ok {
		rt, ok := clientVal.(*bedrockruntime.Client)
		if !ok {
			return nil, fmt.Errorf("invalid client type in pool")
		}
		return rt, nil
	}
	awsCfg, err := buildAwsConfig(ctx, credentials)
	if err != nil {
		return nil, err
	}
	rt := bedrockruntime.NewFromConfig(awsCfg)
	c.clientPool.Store(clientKey, rt)
	return rt, nil
}

func buildClientKey(credentials providers.Credentials) string {
	b := credentials.AwsBedrock
	if b == nil {
		return "default"
	}
	return strings.Join([]string{b.Region, b.AccessKey, b.RoleARN}, "|")
}

func buildAwsConfig(ctx context.Context, credentials providers.Credentials) (aws.Config, error) {
	b := credentials.AwsBedrock
	if b == nil || b.AccessKey == "" {
		region := defaultRegion
		if b != nil && b.Region != "" {
			region = b.Region
		}
		return config.LoadDefaultConfig(ctx, config.WithRegion(region))
	}

	region := b.Region
	if region == "" {
		region = defaultRegion
	}
	if b.UseRole && b.RoleARN != "" {
		creds, err := assumeRole(ctx, b.AccessKey, b.SecretKey, b.RoleARN, region)
		if err != nil {
			return aws.Config{}, err
		}
		return loadAWSConfig(ctx, *creds.AccessKeyId, *creds.SecretAccessKey, *creds.SessionToken, region)
	}
	return loadAWSConfig(ctx, b.AccessKey, b.SecretKey, b.SessionToken, region)
}

func loadAWSConfig(ctx context.Context, accessKey, secretKey, sessionToken, region string) (aws.Config, error) {
	return config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(aws.CredentialsProviderFunc(
			func(ctx context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     accessKey,
					SecretAccessKey: secretKey,
					SessionToken:    sessionToken,
				}, nil
			},
		)),
		config.WithRegion(region),
	)
}

func assumeRole(ctx context.Context, accessKey, secretKey, roleARN, region string) (*stsTypes.Credentials, error) {
	baseCfg, err := loadAWSConfig(ctx, accessKey, secretKey, "", region)
	if err != nil {
		return nil, fmt.Errorf("unable to load base AWS config: %w", err)
	}
	output, err := sts.NewFromConfig(baseCfg).AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(roleARN),
		RoleSessionName: aws.String("ImageGuardSession"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assume role: %w", err)
	}
	return output.Credentials, nil
}

func isClaudeModel(model string) bool {
	return strings.Contains(model, ModelPrefixAnthropicClaude)
}
