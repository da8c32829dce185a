package models

// RegimeType is the closed set of market/correlation classifications
type RegimeType string

const (
	// Single-asset technical regimes
	RegimeBull           RegimeType = "bull"
	RegimeBear           RegimeType = "bear"
	RegimeSideways       RegimeType = "sideways"
	RegimeHighVolatility RegimeType = "high_volatility"
	RegimeLowVolatility  RegimeType = "low_volatility"

	// Correlation regimes
	RegimeNormal     RegimeType = "normal"
	RegimeCrisis     RegimeType = "crisis"
	RegimeEuphoria   RegimeType = "euphoria"
	RegimeTransition RegimeType = "transition"
)

// Regime is a classification of current behavior, not a prediction.
// Derived solely from the current snapshot plus one historical reference.
type Regime struct {
	Type        RegimeType `json:"type"`
	Confidence  float64    `json:"confidence"` // 0..1
	Description string     `json:"description"`
}
