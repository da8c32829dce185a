package models

// IndicatorVector is the fixed technical-feature snapshot for one symbol at
// the latest bar. Pure function of the price series; carries no identity.
type IndicatorVector struct {
	RSI14 float64 `json:"rsi_14"`

	MACDLine      float64 `json:"macd_line"`
	MACDSignal    float64 `json:"macd_signal"`
	MACDHistogram float64 `json:"macd_histogram"`

	BollUpper  float64 `json:"boll_upper"`
	BollMiddle float64 `json:"boll_middle"`
	BollLower  float64 `json:"boll_lower"`
	// PercentB is undefined when the bands have zero width; consumers must
	// check PercentBValid before using it.
	PercentB      float64 `json:"percent_b"`
	PercentBValid bool    `json:"percent_b_valid"`

	ATR14 float64 `json:"atr_14"`
	ADX14 float64 `json:"adx_14"`

	StochK float64 `json:"stoch_k"`
	StochD float64 `json:"stoch_d"`

	EMA20  float64 `json:"ema_20"`
	EMA50  float64 `json:"ema_50"`
	EMA200 float64 `json:"ema_200"`

	VWAP20      float64 `json:"vwap_20"`
	OBV         float64 `json:"obv"`
	VolumeRatio float64 `json:"volume_ratio"`
}
