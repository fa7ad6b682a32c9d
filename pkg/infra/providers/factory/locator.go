package factory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/NeuralTrust/ImageGuard/pkg/infra/httpx"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/providers"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/providers/anthropic"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/providers/azure"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/providers/bedrock"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/providers/gemini"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/providers/openai"
)

const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderBedrock   = "bedrock"
	ProviderAzure     = "azure"
)

// ProviderLocator hands out the vision client a detector is configured for.
type ProviderLocator interface {
	Get(provider string) (providers.Client, error)
	Providers() []string
}

type LocatorOption func(map[string]providers.Client)

// WithClient registers or replaces the client for name.
func WithClient(name string, client providers.Client) LocatorOption {
	return func(m map[string]providers.Client) { m[name] = client }
}

type providerLocator struct {
	clients map[string]providers.Client
}

// NewProviderLocator creates each client once; detectors sharing a provider
// share its connection pool.
func NewProviderLocator(httpClient httpx.Client, opts ...LocatorOption) ProviderLocator {
	clients := map[string]providers.Client{
		ProviderOpenAI:    openai.NewOpenaiClient(),
		ProviderGemini:    gemini.NewGeminiClient(),
		ProviderAnthropic: anthropic.NewAnthropicClient(),
		ProviderBedrock:   bedrock.NewBedrockClient(),
		ProviderAzure:     azure.NewAzureClient(httpClient),
	}
	for _, opt := range opts {
		opt(clients)
	}
	return &providerLocator{clients: clients}
}

func (l *providerLocator) Get(provider string) (providers.Client, error) {
	if c, ok := l.clients[provider]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("unsupported provider: %s (available: %s)", provider, strings.Join(l.Providers(), ", "))
}

func (l *providerLocator) Providers() []string {
	names := make([]string, 0, len(l.clients))
	for n := range l.clients {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
