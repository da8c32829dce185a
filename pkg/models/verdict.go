package models

// Signal is the closed set of agent recommendations
type Signal string

const (
	SignalStrongBuy  Signal = "strong_buy"
	SignalBuy        Signal = "buy"
	SignalHold       Signal = "hold"
	SignalSell       Signal = "sell"
	SignalStrongSell Signal = "strong_sell"
)

// Score maps a signal onto the voting scale used by the aggregator
func (s Signal) Score() float64 {
	switch s {
	case SignalStrongBuy:
		return 2
	case SignalBuy:
		return 1
	case SignalSell:
		return -1
	case SignalStrongSell:
		return -2
	default:
		return 0
	}
}

// Valid reports whether s is one of the five known signals
func (s Signal) Valid() bool {
	switch s {
	case SignalStrongBuy, SignalBuy, SignalHold, SignalSell, SignalStrongSell:
		return true
	}
	return false
}

// AgentVerdict is one agent's scored opinion. Immutable once produced.
type AgentVerdict struct {
	AgentID    string   `json:"agent_id"`
	Signal     Signal   `json:"signal"`
	Confidence float64  `json:"confidence"` // 0..100
	Weight     float64  `json:"weight"`     // (0,1], normalized across the pool
	Reasoning  string   `json:"reasoning"`
	Factors    []string `json:"factors"`
}

// ConsensusResult is the weighted aggregation of all agent verdicts
type ConsensusResult struct {
	Signal        Signal         `json:"signal"`
	Confidence    float64        `json:"confidence"` // weight-normalized average, 0..100
	WeightedScore float64        `json:"weighted_score"`
	VoteBreakdown map[string]int `json:"vote_breakdown"` // buy/sell/hold bucket counts
	RiskVeto      bool           `json:"risk_veto"`
	Summary       string         `json:"summary"`
	Verdicts      []AgentVerdict `json:"verdicts"`
}
