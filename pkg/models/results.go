package models

import (
	"time"

	"github.com/google/uuid"
)

// AdvisoryOpinion is the schema-validated response of the advisory oracle
// for a single-asset analysis request
type AdvisoryOpinion struct {
	Recommendation Signal   `json:"recommendation"`
	Confidence     float64  `json:"confidence"` // 0..100
	Reasoning      string   `json:"reasoning"`
	KeyFactors     []string `json:"key_factors"`
	PriceTarget    float64  `json:"price_target,omitempty"`
}

// EnhancedAnalysisResult is the full output of one single-asset analysis
type EnhancedAnalysisResult struct {
	ID         uuid.UUID        `json:"id"`
	Symbol     string           `json:"symbol"`
	Price      float64          `json:"price"`
	Indicators *IndicatorVector `json:"indicators"`
	Regime     Regime           `json:"regime"`
	Consensus  *ConsensusResult `json:"consensus"`
	Sizing     *PositionSizing  `json:"sizing"`
	AnalyzedAt time.Time        `json:"analyzed_at"`
}
