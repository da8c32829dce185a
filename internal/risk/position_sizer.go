package risk

import (
	"github.com/quantex/signal-engine/internal/adapters/config"
	"github.com/quantex/signal-engine/pkg/models"
)

// kellyMultiplier derates the raw Kelly fraction (fractional Kelly)
const kellyMultiplier = 0.25

// Sizer calculates bounded capital-allocation recommendations
type Sizer struct {
	maxRiskPercent float64
}

// NewSizer creates new position sizer
func NewSizer(cfg *config.EngineConfig) *Sizer {
	return &Sizer{maxRiskPercent: cfg.MaxRiskPercent}
}

// MaxRiskPercent returns the configured clamp ceiling
func (s *Sizer) MaxRiskPercent() float64 {
	return s.maxRiskPercent
}

// Calculate applies the fractional-Kelly formula to a win-rate/payoff triple.
// f = (b*p - q) / b with b = avgWin/avgLoss, p = winRate, q = 1-p; the
// derated fraction is clamped to [0, maxRiskPercent] before it is returned.
func (s *Sizer) Calculate(winRate, avgWin, avgLoss, accountBalance float64) (*models.PositionSizing, error) {
	if winRate <= 0 || winRate >= 1 {
		return nil, &models.DegenerateInputError{Field: "winRate", Reason: "must be in the open interval (0,1)"}
	}
	if avgLoss <= 0 {
		return nil, &models.DegenerateInputError{Field: "avgLoss", Reason: "must be positive to avoid division by zero"}
	}
	if avgWin <= 0 {
		return nil, &models.DegenerateInputError{Field: "avgWin", Reason: "must be positive"}
	}
	if accountBalance <= 0 {
		return nil, &models.DegenerateInputError{Field: "accountBalance", Reason: "must be positive"}
	}

	b := avgWin / avgLoss
	p := winRate
	q := 1 - p

	kelly := (b*p - q) / b
	fraction := kelly * kellyMultiplier

	if fraction < 0 {
		fraction = 0
	}
	if fraction > s.maxRiskPercent {
		fraction = s.maxRiskPercent
	}

	return &models.PositionSizing{
		KellyFraction:   fraction,
		RecommendedSize: accountBalance * fraction,
		MaxRisk:         accountBalance * s.maxRiskPercent,
		RiskRewardRatio: b,
	}, nil
}
