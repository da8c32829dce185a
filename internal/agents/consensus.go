package agents

import (
	"fmt"
	"strings"

	"github.com/quantex/signal-engine/pkg/models"
)

// Consensus thresholds on the weighted score
const (
	strongBuyThreshold  = 1.2
	buyThreshold        = 0.4
	sellThreshold       = -0.4
	strongSellThreshold = -1.2
)

// riskVetoConfidence is the risk-agent confidence below which a bearish risk
// verdict vetoes the consensus into hold
const riskVetoConfidence = 30

// Aggregate combines agent verdicts via weighted voting into one consensus.
// weightedScore = sum(score * weight * confidence/100) / sum(weight);
// overall confidence is the weight-normalized average of contributing
// confidences, never the weighted score itself. The computation is a plain
// sum, so reordering the verdict list cannot change the result.
func Aggregate(verdicts []models.AgentVerdict) (*models.ConsensusResult, error) {
	if len(verdicts) == 0 {
		return nil, &models.DegenerateInputError{Field: "verdicts", Reason: "no agent verdicts to aggregate"}
	}

	var weightSum, scoreSum, confidenceSum float64
	votes := map[string]int{"buy": 0, "sell": 0, "hold": 0}

	for _, v := range verdicts {
		weightSum += v.Weight
		scoreSum += v.Signal.Score() * v.Weight * v.Confidence / 100
		confidenceSum += v.Weight * v.Confidence
		votes[voteBucket(v.Signal)]++
	}

	if weightSum == 0 {
		return nil, &models.DegenerateInputError{Field: "verdicts", Reason: "total agent weight is zero"}
	}

	weightedScore := scoreSum / weightSum
	confidence := confidenceSum / weightSum

	signal := signalFromScore(weightedScore)

	// Risk-agent veto: an uncertain bearish risk read forces hold
	veto := false
	for _, v := range verdicts {
		if v.AgentID == AgentRisk && v.Confidence < riskVetoConfidence &&
			(v.Signal == models.SignalSell || v.Signal == models.SignalStrongSell) {
			veto = true
			signal = models.SignalHold
			break
		}
	}

	result := &models.ConsensusResult{
		Signal:        signal,
		Confidence:    confidence,
		WeightedScore: weightedScore,
		VoteBreakdown: votes,
		RiskVeto:      veto,
		Verdicts:      verdicts,
	}
	result.Summary = buildSummary(result)

	return result, nil
}

func signalFromScore(weightedScore float64) models.Signal {
	switch {
	case weightedScore >= strongBuyThreshold:
		return models.SignalStrongBuy
	case weightedScore >= buyThreshold:
		return models.SignalBuy
	case weightedScore <= strongSellThreshold:
		return models.SignalStrongSell
	case weightedScore <= sellThreshold:
		return models.SignalSell
	default:
		return models.SignalHold
	}
}

func voteBucket(s models.Signal) string {
	switch s {
	case models.SignalStrongBuy, models.SignalBuy:
		return "buy"
	case models.SignalStrongSell, models.SignalSell:
		return "sell"
	default:
		return "hold"
	}
}

// buildSummary renders the per-agent breakdown for human consumption
func buildSummary(result *models.ConsensusResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Consensus reached with %d agents participating.\n", len(result.Verdicts))
	fmt.Fprintf(&b, "Vote breakdown: %d buy, %d sell, %d hold.\n",
		result.VoteBreakdown["buy"], result.VoteBreakdown["sell"], result.VoteBreakdown["hold"])

	if result.RiskVeto {
		b.WriteString("Risk agent vetoed the trade due to uncertain downside risk; recommendation forced to hold.\n")
	}

	b.WriteString("\nKey insights from agents:\n")
	for _, v := range result.Verdicts {
		fmt.Fprintf(&b, "- %s: %s (confidence %.0f%%)\n", v.AgentID, strings.ToUpper(string(v.Signal)), v.Confidence)
	}

	return b.String()
}
