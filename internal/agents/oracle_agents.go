package agents

import (
	"context"

	"go.uber.org/zap"

	"github.com/quantex/signal-engine/internal/adapters/oracle"
	"github.com/quantex/signal-engine/pkg/logger"
	"github.com/quantex/signal-engine/pkg/models"
)

// FundamentalAgent consults the advisory oracle for a valuation view.
// On any oracle failure it degrades to the documented neutral verdict;
// oracle errors never propagate to the pool.
type FundamentalAgent struct {
	weight  float64
	advisor *oracle.Advisor
}

// NewFundamentalAgent creates new fundamental agent
func NewFundamentalAgent(weight float64, advisor *oracle.Advisor) *FundamentalAgent {
	return &FundamentalAgent{weight: weight, advisor: advisor}
}

func (a *FundamentalAgent) Name() string    { return AgentFundamental }
func (a *FundamentalAgent) Weight() float64 { return a.weight }

func (a *FundamentalAgent) Applicable(_ *models.AnalysisInput) bool { return true }

func (a *FundamentalAgent) Analyze(ctx context.Context, input *models.AnalysisInput) models.AgentVerdict {
	return oracleVerdict(ctx, a.advisor, oracle.AdviceFundamental, AgentFundamental, a.weight, input)
}

// SentimentAgent consults the advisory oracle for a crowd-positioning view,
// with the same degradation contract as FundamentalAgent
type SentimentAgent struct {
	weight  float64
	advisor *oracle.Advisor
}

// NewSentimentAgent creates new sentiment agent
func NewSentimentAgent(weight float64, advisor *oracle.Advisor) *SentimentAgent {
	return &SentimentAgent{weight: weight, advisor: advisor}
}

func (a *SentimentAgent) Name() string    { return AgentSentiment }
func (a *SentimentAgent) Weight() float64 { return a.weight }

func (a *SentimentAgent) Applicable(_ *models.AnalysisInput) bool { return true }

func (a *SentimentAgent) Analyze(ctx context.Context, input *models.AnalysisInput) models.AgentVerdict {
	return oracleVerdict(ctx, a.advisor, oracle.AdviceSentiment, AgentSentiment, a.weight, input)
}

func oracleVerdict(ctx context.Context, advisor *oracle.Advisor, kind oracle.AdvisoryKind, agentID string, weight float64, input *models.AnalysisInput) models.AgentVerdict {
	opinion, err := advisor.Advise(ctx, kind, input)
	if err != nil {
		logger.Debug("oracle agent falling back",
			zap.String("agent", agentID),
			zap.String("symbol", input.Symbol),
			zap.Error(err),
		)
		return fallbackVerdict(agentID, weight)
	}

	factors := opinion.KeyFactors
	if len(factors) == 0 {
		factors = []string{opinion.Reasoning}
	}

	return models.AgentVerdict{
		AgentID:    agentID,
		Signal:     opinion.Recommendation,
		Confidence: opinion.Confidence,
		Weight:     weight,
		Reasoning:  opinion.Reasoning,
		Factors:    factors,
	}
}
