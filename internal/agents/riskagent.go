package agents

import (
	"context"
	"fmt"

	"github.com/quantex/signal-engine/pkg/models"
)

// RiskAgent scores the downside picture: realized volatility, drawdown and
// the prevailing regime. It leans against positions in hostile conditions.
type RiskAgent struct {
	weight float64
}

// NewRiskAgent creates new risk agent
func NewRiskAgent(weight float64) *RiskAgent {
	return &RiskAgent{weight: weight}
}

func (a *RiskAgent) Name() string    { return AgentRisk }
func (a *RiskAgent) Weight() float64 { return a.weight }

func (a *RiskAgent) Applicable(input *models.AnalysisInput) bool {
	return input.Indicators != nil && len(input.Closes) > 0
}

func (a *RiskAgent) Analyze(_ context.Context, input *models.AnalysisInput) models.AgentVerdict {
	iv := input.Indicators
	price := input.Price

	score := 0.0
	var factors []string

	// ATR relative to price
	if price > 0 {
		atrPct := iv.ATR14 / price * 100
		if atrPct > 5 {
			score -= 2
			factors = append(factors, fmt.Sprintf("Elevated volatility: ATR %.1f%% of price", atrPct))
		} else if atrPct < 1.5 {
			score++
			factors = append(factors, fmt.Sprintf("Calm volatility: ATR %.1f%% of price", atrPct))
		}
	}

	// Regime
	switch input.Regime.Type {
	case models.RegimeHighVolatility:
		score -= 2
		factors = append(factors, "High-volatility regime: position risk elevated")
	case models.RegimeBear:
		score--
		factors = append(factors, "Bear regime: downside risk dominant")
	case models.RegimeBull:
		score++
		factors = append(factors, "Bull regime: trend supports exposure")
	case models.RegimeLowVolatility:
		score++
		factors = append(factors, "Low-volatility regime: favorable risk conditions")
	}

	// Drawdown from the recent high
	if dd := drawdownPercent(input.Closes); dd > 20 {
		score -= 2
		factors = append(factors, fmt.Sprintf("Drawdown %.1f%% from recent high exceeds 20%%", dd))
	} else if dd > 10 {
		score--
		factors = append(factors, fmt.Sprintf("Drawdown %.1f%% from recent high", dd))
	}

	return verdictFromScore(AgentRisk, a.weight, score, factors)
}

// drawdownPercent measures the latest close against the series high
func drawdownPercent(closes []float64) float64 {
	if len(closes) == 0 {
		return 0
	}
	high := closes[0]
	for _, c := range closes {
		if c > high {
			high = c
		}
	}
	if high == 0 {
		return 0
	}
	return (high - closes[len(closes)-1]) / high * 100
}
