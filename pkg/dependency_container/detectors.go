package dependency_container

import (
	"fmt"

	"github.com/NeuralTrust/ImageGuard/pkg/config"
	"github.com/NeuralTrust/ImageGuard/pkg/detectors"
	"github.com/NeuralTrust/ImageGuard/pkg/detectors/nudity"
	"github.com/NeuralTrust/ImageGuard/pkg/detectors/vision"
	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/httpx"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/providers/factory"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

// NewDetectorSet builds the nudity detector and one vision detector per
// prompt step from the configuration.
func NewDetectorSet(
	cfg *config.Config,
	logger *logrus.Logger,
	locator factory.ProviderLocator,
	fastClient *fasthttp.Client,
	httpClient httpx.Client,
) (detectors.Set, error) {
	backend, err := nudity.NewBackend(cfg.Detectors.Nudity, fastClient, httpClient)
	if err != nil {
		return detectors.Set{}, fmt.Errorf("nudity detector: %w", err)
	}
	breaker := httpx.NewCircuitBreaker(
		backend.Name(),
		cfg.Detectors.Breaker.Timeout,
		cfg.Detectors.Breaker.MaxFailures,
		httpx.WithStateLogger(logger),
	)

	built := make(map[string]detectors.Detector, len(vision.TextDetectorNames()))
	for _, name := range vision.TextDetectorNames() {
		vcfg, err := cfg.VisionConfig(name)
		if err != nil {
			return detectors.Set{}, err
		}
		client, err := locator.Get(vcfg.Provider)
		if err != nil {
			return detectors.Set{}, fmt.Errorf("detector %s: %w", name, err)
		}
		d, err := vision.NewDetector(logger, name, client, vcfg)
		if err != nil {
			return detectors.Set{}, err
		}
		built[name] = d
	}

	return detectors.Set{
		Nudity:          nudity.NewDetector(logger, backend, breaker, cfg.Detectors.Nudity.MinScore),
		NudityException: built[moderation.AgentNudityException],
		Violence:        built[moderation.AgentViolence],
		Drugs:           built[moderation.AgentDrugs],
		AlcoholSmoking:  built[moderation.AgentAlcoholSmoking],
		Hate:            built[moderation.AgentHate],
		PIIText:         built[moderation.AgentPIIText],
		QRCode:          built[moderation.AgentQRCode],
	}, nil
}
