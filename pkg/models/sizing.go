package models

// PositionSizing is the fractional-Kelly capital-allocation recommendation.
// KellyFraction is always clamped to [0, maxRiskPercent]; an unclamped Kelly
// value never reaches the caller.
type PositionSizing struct {
	KellyFraction   float64 `json:"kelly_fraction"`
	RecommendedSize float64 `json:"recommended_size"`
	MaxRisk         float64 `json:"max_risk"`
	RiskRewardRatio float64 `json:"risk_reward_ratio"`
}
