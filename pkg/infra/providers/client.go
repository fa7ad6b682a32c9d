package providers

import (
	"context"
)

type Config struct {
	Credentials  Credentials `json:"credentials" mapstructure:"credentials"`
	Model        string      `json:"model" mapstructure:"model"`
	MaxTokens    int         `json:"max_tokens,omitempty" mapstructure:"max_tokens"`
	Temperature  float64     `json:"temperature,omitempty" mapstructure:"temperature"`
	SystemPrompt string      `json:"system_prompt,omitempty" mapstructure:"system_prompt"`
	Instructions []string    `json:"instructions,omitempty" mapstructure:"instructions"`
}

type Credentials struct {
	ApiKey     string      `json:"api_key,omitempty" mapstructure:"api_key"`
	Azure      *Azure      `json:"azure,omitempty" mapstructure:"azure"`
	AwsBedrock *AwsBedrock `json:"aws_bedrock,omitempty" mapstructure:"aws_bedrock"`
}

type Azure struct {
	Endpoint    string `json:"endpoint" mapstructure:"endpoint"`
	ApiVersion  string `json:"api_version,omitempty" mapstructure:"api_version"`
	UseIdentity bool   `json:"use_identity,omitempty" mapstructure:"use_identity"`
}

type AwsBedrock struct {
	Region       string `json:"region" mapstructure:"region"`
	AccessKey    string `json:"access_key,omitempty" mapstructure:"access_key"`
	SecretKey    string `json:"secret_key,omitempty" mapstructure:"secret_key"`
	SessionToken string `json:"session_token,omitempty" mapstructure:"session_token"`
	UseRole      bool   `json:"use_role,omitempty" mapstructure:"use_role"`
	RoleARN      string `json:"role_arn,omitempty" mapstructure:"role_arn"`
}

//go:generate mockery --name=Client --dir=. --output=./mocks --filename=client_mock.go --case=underscore

// Client asks a multimodal model about an image. A nil image sends the
// prompt alone.
type Client interface {
	Ask(ctx context.Context, config *Config, prompt string, image *Image) (*CompletionResponse, error)
}
