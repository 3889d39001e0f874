package footballapi

import (
	"context"

	"github.com/riskibarqy/score-predictor/internal/platform/logging"
	"github.com/riskibarqy/score-predictor/internal/usecase"
)

const fallbackSourceName = "fallback"

// FallbackProvider stands in when no provider credentials are configured.
// It reports no fixtures, so stored states stay unchanged.
type FallbackProvider struct {
	logger *logging.Logger
}

func NewFallbackProvider(logger *logging.Logger) *FallbackProvider {
	if logger == nil {
		logger = logging.Default()
	}
	return &FallbackProvider{logger: logger}
}

func (p *FallbackProvider) FetchLiveStates(ctx context.Context, externalIDs []int64) (map[int64]usecase.ProviderFixtureState, error) {
	p.logger.DebugContext(ctx, "live score provider not configured, keeping stored fixture states", "requested", len(externalIDs))
	return map[int64]usecase.ProviderFixtureState{}, nil
}

func (p *FallbackProvider) Source() string {
	return fallbackSourceName
}
