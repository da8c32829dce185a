package oracle

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/quantex/signal-engine/pkg/logger"
	"github.com/quantex/signal-engine/pkg/models"
)

// AdvisoryKind selects the prompt family for an advisory request
type AdvisoryKind string

const (
	AdviceFundamental AdvisoryKind = "fundamental"
	AdviceSentiment   AdvisoryKind = "sentiment"
)

// Advisor is the single adapter behind every oracle call site. It builds the
// structured prompt, requests a schema-constrained reply, validates the shape
// and returns a typed result; a parse failure never escapes as a panic or a
// malformed value.
type Advisor struct {
	provider Provider
}

// NewAdvisor creates new advisor over a provider; provider may be nil or
// disabled, in which case every call reports OracleUnavailableError
func NewAdvisor(provider Provider) *Advisor {
	return &Advisor{provider: provider}
}

// Enabled reports whether the underlying provider can be called
func (a *Advisor) Enabled() bool {
	return a != nil && a.provider != nil && a.provider.IsEnabled()
}

// Advise requests a single-asset advisory opinion
func (a *Advisor) Advise(ctx context.Context, kind AdvisoryKind, input *models.AnalysisInput) (*models.AdvisoryOpinion, error) {
	if !a.Enabled() {
		return nil, &models.OracleUnavailableError{Cause: fmt.Errorf("oracle disabled")}
	}

	var userPrompt string
	switch kind {
	case AdviceFundamental:
		userPrompt = buildFundamentalPrompt(input)
	case AdviceSentiment:
		userPrompt = buildSentimentPrompt(input)
	default:
		return nil, &models.OracleUnavailableError{Cause: fmt.Errorf("unknown advisory kind: %s", kind)}
	}

	content, err := a.provider.Complete(ctx, advisorySystemPrompt, userPrompt)
	if err != nil {
		logger.Warn("oracle call failed",
			zap.String("provider", a.provider.GetName()),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return nil, &models.OracleUnavailableError{Cause: err}
	}

	opinion, err := parseAdvisory(content)
	if err != nil {
		logger.Warn("oracle response malformed",
			zap.String("provider", a.provider.GetName()),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return nil, &models.OracleUnavailableError{Cause: err}
	}

	return opinion, nil
}

// ForecastCorrelation requests a pair-correlation forecast
func (a *Advisor) ForecastCorrelation(ctx context.Context, pairA, pairB string, current, historical float64) (*models.CorrelationForecast, error) {
	if !a.Enabled() {
		return nil, &models.OracleUnavailableError{Cause: fmt.Errorf("oracle disabled")}
	}

	userPrompt := buildCorrelationPrompt(pairA, pairB, current, historical)

	content, err := a.provider.Complete(ctx, correlationSystemPrompt, userPrompt)
	if err != nil {
		logger.Warn("oracle correlation forecast failed",
			zap.String("provider", a.provider.GetName()),
			zap.Error(err),
		)
		return nil, &models.OracleUnavailableError{Cause: err}
	}

	forecast, err := parseCorrelationForecast(content)
	if err != nil {
		logger.Warn("oracle forecast malformed",
			zap.String("provider", a.provider.GetName()),
			zap.Error(err),
		)
		return nil, &models.OracleUnavailableError{Cause: err}
	}

	return forecast, nil
}
