package agents

import (
	"context"
	"fmt"

	"github.com/quantex/signal-engine/pkg/models"
)

// TechnicalAgent scores the indicator snapshot with deterministic
// threshold rules. Every branch appends a factor string so the reasoning is
// always reconstructable from the factors.
type TechnicalAgent struct {
	weight float64
}

// NewTechnicalAgent creates new technical agent
func NewTechnicalAgent(weight float64) *TechnicalAgent {
	return &TechnicalAgent{weight: weight}
}

func (a *TechnicalAgent) Name() string    { return AgentTechnical }
func (a *TechnicalAgent) Weight() float64 { return a.weight }

func (a *TechnicalAgent) Applicable(input *models.AnalysisInput) bool {
	return input.Indicators != nil
}

func (a *TechnicalAgent) Analyze(_ context.Context, input *models.AnalysisInput) models.AgentVerdict {
	iv := input.Indicators
	price := input.Price

	score := 0.0
	var factors []string

	// RSI
	if iv.RSI14 < 30 {
		score += 2
		factors = append(factors, "RSI oversold (<30)")
	} else if iv.RSI14 > 70 {
		score -= 2
		factors = append(factors, "RSI overbought (>70)")
	}

	// MACD
	if iv.MACDHistogram > 0 {
		score++
		factors = append(factors, "MACD histogram positive (bullish momentum)")
	} else if iv.MACDHistogram < 0 {
		score--
		factors = append(factors, "MACD histogram negative (bearish momentum)")
	}

	// Bollinger position (skip when bands have zero width)
	if iv.PercentBValid {
		if iv.PercentB < 0.2 {
			score++
			factors = append(factors, "Price near lower Bollinger band")
		} else if iv.PercentB > 0.8 {
			score--
			factors = append(factors, "Price near upper Bollinger band")
		}
	}

	// Moving-average alignment
	if price > iv.EMA20 && iv.EMA20 > iv.EMA50 {
		score++
		factors = append(factors, "Uptrend: price above EMA20 above EMA50")
	} else if price < iv.EMA20 && iv.EMA20 < iv.EMA50 {
		score--
		factors = append(factors, "Downtrend: price below EMA20 below EMA50")
	}

	// Stochastic
	if iv.StochK < 20 {
		score++
		factors = append(factors, "Stochastic oversold (<20)")
	} else if iv.StochK > 80 {
		score--
		factors = append(factors, "Stochastic overbought (>80)")
	}

	// Volume confirms the direction already on the board
	if iv.VolumeRatio > 1.5 {
		if score > 0 {
			score++
		} else if score < 0 {
			score--
		}
		factors = append(factors, fmt.Sprintf("Volume %.1fx above 20-bar average", iv.VolumeRatio))
	}

	return verdictFromScore(AgentTechnical, a.weight, score, factors)
}
