package agents

import (
	"context"
	"fmt"

	"github.com/quantex/signal-engine/pkg/models"
)

// The options agents participate only when the input carries an options
// context; the pool renormalizes weights around them.

// OptionsGreeksAgent scores directional and convexity exposure from greeks
type OptionsGreeksAgent struct {
	weight float64
}

// NewOptionsGreeksAgent creates new options greeks agent
func NewOptionsGreeksAgent(weight float64) *OptionsGreeksAgent {
	return &OptionsGreeksAgent{weight: weight}
}

func (a *OptionsGreeksAgent) Name() string    { return AgentOptionsGreeks }
func (a *OptionsGreeksAgent) Weight() float64 { return a.weight }

func (a *OptionsGreeksAgent) Applicable(input *models.AnalysisInput) bool {
	return input.Options != nil
}

func (a *OptionsGreeksAgent) Analyze(_ context.Context, input *models.AnalysisInput) models.AgentVerdict {
	opt := input.Options

	score := 0.0
	var factors []string

	if opt.Delta > 0.6 {
		score++
		factors = append(factors, fmt.Sprintf("Deep bullish delta exposure (%.2f)", opt.Delta))
	} else if opt.Delta < -0.6 {
		score--
		factors = append(factors, fmt.Sprintf("Deep bearish delta exposure (%.2f)", opt.Delta))
	}

	if opt.Gamma > 0.05 {
		score++
		factors = append(factors, fmt.Sprintf("High gamma (%.3f): convexity works for the position", opt.Gamma))
	}

	if opt.UnderlyingPrice > 0 {
		thetaPct := -opt.Theta / opt.UnderlyingPrice * 100
		if thetaPct > 0.5 {
			score--
			factors = append(factors, fmt.Sprintf("Theta decay %.2f%%/day of underlying", thetaPct))
		}
	}

	if opt.Vega > 0.3 {
		factors = append(factors, fmt.Sprintf("High vega (%.2f): sensitive to volatility shifts", opt.Vega))
	}

	return verdictFromScore(AgentOptionsGreeks, a.weight, score, factors)
}

// OptionsVolatilityAgent scores the implied-volatility surface: rich IV
// favors selling premium, cheap IV favors buying it
type OptionsVolatilityAgent struct {
	weight float64
}

// NewOptionsVolatilityAgent creates new options volatility agent
func NewOptionsVolatilityAgent(weight float64) *OptionsVolatilityAgent {
	return &OptionsVolatilityAgent{weight: weight}
}

func (a *OptionsVolatilityAgent) Name() string    { return AgentOptionsVolatility }
func (a *OptionsVolatilityAgent) Weight() float64 { return a.weight }

func (a *OptionsVolatilityAgent) Applicable(input *models.AnalysisInput) bool {
	return input.Options != nil
}

func (a *OptionsVolatilityAgent) Analyze(_ context.Context, input *models.AnalysisInput) models.AgentVerdict {
	opt := input.Options

	score := 0.0
	var factors []string

	if opt.IVRank > 80 {
		score -= 2
		factors = append(factors, fmt.Sprintf("IV rank %.0f: options rich, long premium unattractive", opt.IVRank))
	} else if opt.IVRank < 20 {
		score += 2
		factors = append(factors, fmt.Sprintf("IV rank %.0f: options cheap, long premium attractive", opt.IVRank))
	}

	if iv := input.Indicators; iv != nil && input.Price > 0 {
		realized := iv.ATR14 / input.Price * 100 * 16 // rough annualization of daily range
		spread := opt.ImpliedVolatility*100 - realized
		if spread > 10 {
			score--
			factors = append(factors, fmt.Sprintf("Implied vol %.0f%% well above realized %.0f%%", opt.ImpliedVolatility*100, realized))
		} else if spread < -10 {
			score++
			factors = append(factors, fmt.Sprintf("Implied vol %.0f%% below realized %.0f%%", opt.ImpliedVolatility*100, realized))
		}
	}

	return verdictFromScore(AgentOptionsVolatility, a.weight, score, factors)
}

// OptionsStrategyAgent scores positioning flow: put/call ratio extremes are
// read contrarian, open interest confirms
type OptionsStrategyAgent struct {
	weight float64
}

// NewOptionsStrategyAgent creates new options strategy agent
func NewOptionsStrategyAgent(weight float64) *OptionsStrategyAgent {
	return &OptionsStrategyAgent{weight: weight}
}

func (a *OptionsStrategyAgent) Name() string    { return AgentOptionsStrategy }
func (a *OptionsStrategyAgent) Weight() float64 { return a.weight }

func (a *OptionsStrategyAgent) Applicable(input *models.AnalysisInput) bool {
	return input.Options != nil
}

func (a *OptionsStrategyAgent) Analyze(_ context.Context, input *models.AnalysisInput) models.AgentVerdict {
	opt := input.Options

	score := 0.0
	var factors []string

	if opt.PutCallRatio > 1.2 {
		score += 2
		factors = append(factors, fmt.Sprintf("Put/call ratio %.2f elevated (contrarian bullish)", opt.PutCallRatio))
	} else if opt.PutCallRatio > 0 && opt.PutCallRatio < 0.7 {
		score -= 2
		factors = append(factors, fmt.Sprintf("Put/call ratio %.2f depressed (contrarian bearish)", opt.PutCallRatio))
	}

	if opt.StrikePrice > 0 && opt.UnderlyingPrice > 0 {
		moneyness := (opt.UnderlyingPrice - opt.StrikePrice) / opt.StrikePrice * 100
		if moneyness > 5 {
			score++
			factors = append(factors, fmt.Sprintf("Position %.1f%% in the money", moneyness))
		} else if moneyness < -5 {
			score--
			factors = append(factors, fmt.Sprintf("Position %.1f%% out of the money", moneyness))
		}
	}

	if opt.OpenInterest > 10000 {
		factors = append(factors, fmt.Sprintf("Open interest %.0f: liquid strike", opt.OpenInterest))
	}

	return verdictFromScore(AgentOptionsStrategy, a.weight, score, factors)
}

// OptionsRiskAgent scores expiry and decay risk for the options position
type OptionsRiskAgent struct {
	weight float64
}

// NewOptionsRiskAgent creates new options risk agent
func NewOptionsRiskAgent(weight float64) *OptionsRiskAgent {
	return &OptionsRiskAgent{weight: weight}
}

func (a *OptionsRiskAgent) Name() string    { return AgentOptionsRisk }
func (a *OptionsRiskAgent) Weight() float64 { return a.weight }

func (a *OptionsRiskAgent) Applicable(input *models.AnalysisInput) bool {
	return input.Options != nil
}

func (a *OptionsRiskAgent) Analyze(_ context.Context, input *models.AnalysisInput) models.AgentVerdict {
	opt := input.Options

	score := 0.0
	var factors []string

	if opt.DaysToExpiry > 0 && opt.DaysToExpiry < 7 {
		score -= 2
		factors = append(factors, fmt.Sprintf("%d days to expiry: gamma and pin risk elevated", opt.DaysToExpiry))
	} else if opt.DaysToExpiry >= 45 {
		score++
		factors = append(factors, fmt.Sprintf("%d days to expiry: decay pressure manageable", opt.DaysToExpiry))
	}

	if opt.IVRank > 90 {
		score--
		factors = append(factors, fmt.Sprintf("IV rank %.0f: vulnerable to volatility crush", opt.IVRank))
	}

	if input.Regime.Type == models.RegimeHighVolatility {
		score--
		factors = append(factors, "High-volatility regime compounds options risk")
	}

	return verdictFromScore(AgentOptionsRisk, a.weight, score, factors)
}
