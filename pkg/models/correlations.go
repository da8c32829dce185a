package models

import (
	"time"

	"github.com/google/uuid"
)

// CorrelationMatrix is a symmetric pairwise correlation matrix over the
// basket's symbols. Diagonal is 1 by invariant, entries are in [-1,1].
// It is rebuilt fully on every call, never incrementally mutated.
type CorrelationMatrix struct {
	Symbols []string    `json:"symbols"`
	Values  [][]float64 `json:"values"`
}

// NewCorrelationMatrix allocates an identity matrix for the given symbols
func NewCorrelationMatrix(symbols []string) *CorrelationMatrix {
	n := len(symbols)
	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
		values[i][i] = 1
	}
	syms := make([]string, n)
	copy(syms, symbols)
	return &CorrelationMatrix{Symbols: syms, Values: values}
}

// Size returns the basket size
func (m *CorrelationMatrix) Size() int {
	return len(m.Symbols)
}

// At returns the correlation between assets i and j
func (m *CorrelationMatrix) At(i, j int) float64 {
	return m.Values[i][j]
}

// Set stores a pairwise correlation, preserving symmetry
func (m *CorrelationMatrix) Set(i, j int, v float64) {
	m.Values[i][j] = v
	m.Values[j][i] = v
}

// BreakdownSignificance bands the magnitude of a correlation breakdown
type BreakdownSignificance string

const (
	SignificanceLow      BreakdownSignificance = "low"
	SignificanceMedium   BreakdownSignificance = "medium"
	SignificanceHigh     BreakdownSignificance = "high"
	SignificanceCritical BreakdownSignificance = "critical"
)

// Breakdown is a significant deviation of current correlation from the
// historical reference for one asset pair
type Breakdown struct {
	PairA          string                `json:"pair_a"`
	PairB          string                `json:"pair_b"`
	HistoricalCorr float64               `json:"historical_corr"`
	CurrentCorr    float64               `json:"current_corr"`
	Delta          float64               `json:"delta"`
	Significance   BreakdownSignificance `json:"significance"`
	Cause          string                `json:"cause"`
	Recommendation string                `json:"recommendation"`
}

// CrossAssetSignalType classifies basket-level signals
type CrossAssetSignalType string

const (
	SignalConvergence  CrossAssetSignalType = "convergence"
	SignalDivergence   CrossAssetSignalType = "divergence"
	SignalRegimeChange CrossAssetSignalType = "regime_change"
)

// CrossAssetSignal is a ranked basket-level trading signal
type CrossAssetSignal struct {
	Type        CrossAssetSignalType `json:"type"`
	PairA       string               `json:"pair_a,omitempty"`
	PairB       string               `json:"pair_b,omitempty"`
	Strength    float64              `json:"strength"` // 0..100
	Description string               `json:"description"`
}

// CorrelationForecast is the advisory oracle's opinion on where one pair's
// correlation is heading
type CorrelationForecast struct {
	PredictedCorrelation float64 `json:"predicted_correlation"`
	Direction            string  `json:"direction"` // increase, decrease, stable
	Confidence           float64 `json:"confidence"`
	Reasoning            string  `json:"reasoning"`
}

// CorrelationOptions tunes one correlation analysis call
type CorrelationOptions struct {
	// Historical overrides the typical-correlation lookup when supplied
	Historical *CorrelationMatrix
	// BreakdownThreshold overrides the configured |delta| threshold when > 0
	BreakdownThreshold float64
}

// CorrelationAnalysisResult is the full output of one basket analysis
type CorrelationAnalysisResult struct {
	ID         uuid.UUID          `json:"id"`
	Symbols    []string           `json:"symbols"`
	Current    *CorrelationMatrix `json:"current"`
	Historical *CorrelationMatrix `json:"historical"`
	Regime     Regime             `json:"regime"`
	Breakdowns []Breakdown        `json:"breakdowns"`
	Signals    []CrossAssetSignal `json:"signals"`
	AnalyzedAt time.Time          `json:"analyzed_at"`
}
