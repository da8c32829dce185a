package agents

import (
	"context"
	"math"
	"strings"

	"github.com/quantex/signal-engine/pkg/models"
)

// Agent IDs. The ID is stable and appears in verdicts and logs.
const (
	AgentTechnical         = "technical"
	AgentFundamental       = "fundamental"
	AgentSentiment         = "sentiment"
	AgentRisk              = "risk"
	AgentQuantitative      = "quantitative"
	AgentOptionsGreeks     = "options_greeks"
	AgentOptionsVolatility = "options_volatility"
	AgentOptionsStrategy   = "options_strategy"
	AgentOptionsRisk       = "options_risk"
)

// Agent is an independent scoring unit. Analyze never returns an error:
// agents that depend on unreliable collaborators degrade to their documented
// fallback verdict instead.
type Agent interface {
	// Name returns the stable agent ID
	Name() string

	// Weight returns the agent's base voting weight
	Weight() float64

	// Applicable reports whether the agent can score this input
	Applicable(input *models.AnalysisInput) bool

	// Analyze scores the shared input snapshot
	Analyze(ctx context.Context, input *models.AnalysisInput) models.AgentVerdict
}

// fallbackReasoning marks an oracle outage so downstream consumers can
// distinguish it from genuine low-confidence analysis
const fallbackReasoning = "Analysis unavailable"

// fallbackVerdict is the documented neutral verdict substituted when an
// oracle-backed agent cannot complete
func fallbackVerdict(agentID string, weight float64) models.AgentVerdict {
	return models.AgentVerdict{
		AgentID:    agentID,
		Signal:     models.SignalHold,
		Confidence: 50,
		Weight:     weight,
		Reasoning:  fallbackReasoning,
		Factors:    []string{fallbackReasoning},
	}
}

// verdictFromScore maps an accumulated rule score onto the five-signal scale
// and derives confidence from the score magnitude
func verdictFromScore(agentID string, weight, score float64, factors []string) models.AgentVerdict {
	var signal models.Signal
	switch {
	case score >= 4:
		signal = models.SignalStrongBuy
	case score >= 2:
		signal = models.SignalBuy
	case score <= -4:
		signal = models.SignalStrongSell
	case score <= -2:
		signal = models.SignalSell
	default:
		signal = models.SignalHold
	}

	confidence := 50 + math.Min(45, math.Abs(score)*8)

	if len(factors) == 0 {
		factors = []string{"No notable factors"}
	}

	return models.AgentVerdict{
		AgentID:    agentID,
		Signal:     signal,
		Confidence: confidence,
		Weight:     weight,
		Reasoning:  strings.Join(factors, "; "),
		Factors:    factors,
	}
}
