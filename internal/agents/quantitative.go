package agents

import (
	"context"
	"fmt"
	"math"

	"github.com/quantex/signal-engine/pkg/models"
)

// QuantitativeAgent scores statistical features of the return series:
// momentum, mean-reversion z-score and volume/price balance
type QuantitativeAgent struct {
	weight float64
}

// NewQuantitativeAgent creates new quantitative agent
func NewQuantitativeAgent(weight float64) *QuantitativeAgent {
	return &QuantitativeAgent{weight: weight}
}

func (a *QuantitativeAgent) Name() string    { return AgentQuantitative }
func (a *QuantitativeAgent) Weight() float64 { return a.weight }

func (a *QuantitativeAgent) Applicable(input *models.AnalysisInput) bool {
	return input.Indicators != nil && len(input.Returns) >= 20
}

func (a *QuantitativeAgent) Analyze(_ context.Context, input *models.AnalysisInput) models.AgentVerdict {
	iv := input.Indicators
	returns := input.Returns

	score := 0.0
	var factors []string

	// 20-bar momentum
	momentum := mean(returns[len(returns)-20:])
	if momentum > 0.002 {
		score++
		factors = append(factors, fmt.Sprintf("Positive 20-bar momentum (%.2f%%/bar)", momentum*100))
	} else if momentum < -0.002 {
		score--
		factors = append(factors, fmt.Sprintf("Negative 20-bar momentum (%.2f%%/bar)", momentum*100))
	}

	// Mean-reversion z-score against the 20-bar Bollinger baseline
	if band := iv.BollUpper - iv.BollMiddle; band > 0 {
		z := (input.Price - iv.BollMiddle) / (band / 2) // band = 2 sigma
		if z < -2 {
			score += 2
			factors = append(factors, fmt.Sprintf("Price %.1f sigma below 20-bar mean (mean reversion)", -z))
		} else if z > 2 {
			score -= 2
			factors = append(factors, fmt.Sprintf("Price %.1f sigma above 20-bar mean (mean reversion)", z))
		}
	}

	// Risk-adjusted drift
	if sd := stddev(returns); sd > 0 {
		sharpe := mean(returns) / sd
		if sharpe > 0.1 {
			score++
			factors = append(factors, fmt.Sprintf("Favorable risk-adjusted drift (%.2f)", sharpe))
		} else if sharpe < -0.1 {
			score--
			factors = append(factors, fmt.Sprintf("Unfavorable risk-adjusted drift (%.2f)", sharpe))
		}
	}

	// Volume balance confirming price direction
	if iv.OBV > 0 && momentum > 0 {
		score++
		factors = append(factors, "OBV accumulation confirms upward drift")
	} else if iv.OBV < 0 && momentum < 0 {
		score--
		factors = append(factors, "OBV distribution confirms downward drift")
	}

	return verdictFromScore(AgentQuantitative, a.weight, score, factors)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var variance float64
	for _, v := range values {
		d := v - m
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(values)))
}
