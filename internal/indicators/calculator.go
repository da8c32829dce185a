package indicators

import (
	"math"

	"github.com/quantex/signal-engine/pkg/models"
)

// MinBars is the minimum series length for a full indicator vector.
// Covers the widest trailing window (35 samples of MACD-line history).
const MinBars = 50

// Calculator derives the technical-indicator vector from candle data.
// Stateless; safe for concurrent use.
type Calculator struct{}

// NewCalculator creates new indicator calculator
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Calculate computes the full indicator vector from candles (oldest-first)
func (c *Calculator) Calculate(candles []models.Candle) (*models.IndicatorVector, error) {
	if len(candles) < MinBars {
		return nil, &models.InsufficientDataError{Window: "indicator vector", Need: MinBars, Got: len(candles)}
	}

	closes := make([]float64, len(candles))
	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	volumes := make([]float64, len(candles))

	for i, candle := range candles {
		closes[i] = models.ToFloat64(candle.Close)
		highs[i] = models.ToFloat64(candle.High)
		lows[i] = models.ToFloat64(candle.Low)
		volumes[i] = models.ToFloat64(candle.Volume)
	}

	return c.CalculateRaw(closes, volumes, highs, lows)
}

// CalculateRaw computes the full indicator vector from parallel arrays
// (equal length, oldest-first)
func (c *Calculator) CalculateRaw(closes, volumes, highs, lows []float64) (*models.IndicatorVector, error) {
	n := len(closes)
	if n < MinBars {
		return nil, &models.InsufficientDataError{Window: "indicator vector", Need: MinBars, Got: n}
	}
	if len(volumes) != n || len(highs) != n || len(lows) != n {
		return nil, &models.DegenerateInputError{Field: "series", Reason: "close/volume/high/low arrays must be aligned by index"}
	}

	rsi, err := RSI(closes, 14)
	if err != nil {
		return nil, err
	}

	macdLine, macdSignal, err := MACD(closes)
	if err != nil {
		return nil, err
	}

	upper, middle, lower, err := BollingerBands(closes, 20, 2)
	if err != nil {
		return nil, err
	}

	price := closes[n-1]
	percentB := 0.0
	percentBValid := upper != lower
	if percentBValid {
		percentB = (price - lower) / (upper - lower)
	} else {
		percentB = math.NaN()
	}

	atr, err := ATR(highs, lows, closes, 14)
	if err != nil {
		return nil, err
	}

	stochK, err := Stochastic(highs, lows, closes, 14)
	if err != nil {
		return nil, err
	}

	vwap, err := VWAP(highs, lows, closes, volumes, 20)
	if err != nil {
		return nil, err
	}

	volumeRatio, err := VolumeRatio(volumes, 20)
	if err != nil {
		return nil, err
	}

	return &models.IndicatorVector{
		RSI14:         rsi,
		MACDLine:      macdLine,
		MACDSignal:    macdSignal,
		MACDHistogram: macdLine - macdSignal,
		BollUpper:     upper,
		BollMiddle:    middle,
		BollLower:     lower,
		PercentB:      percentB,
		PercentBValid: percentBValid,
		ATR14:         atr,
		ADX14:         ADX(highs, lows, closes, 14),
		StochK:        stochK,
		// %D mirrors %K; the usual 3-period smoothing is intentionally
		// omitted so both values describe the same bar.
		StochD:      stochK,
		EMA20:       EMA(closes, 20),
		EMA50:       EMA(closes, 50),
		EMA200:      EMA(closes, 200),
		VWAP20:      vwap,
		OBV:         OBV(closes, volumes),
		VolumeRatio: volumeRatio,
	}, nil
}

// Returns computes the simple return series r[i] = (p[i]-p[i-1])/p[i-1],
// substituting 0 where the previous price is 0
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			out[i-1] = 0
			continue
		}
		out[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
	}
	return out
}

// RSI computes the Wilder-style relative strength index over the trailing
// period closes. When the average loss is zero the result is 100.
func RSI(closes []float64, period int) (float64, error) {
	if len(closes) < period+1 {
		return 0, &models.InsufficientDataError{Window: "RSI", Need: period + 1, Got: len(closes)}
	}

	window := closes[len(closes)-period-1:]
	var gains, losses float64
	for i := 1; i < len(window); i++ {
		change := window[i] - window[i-1]
		if change > 0 {
			gains += change
		} else {
			losses += -change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		return 100, nil
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), nil
}

// EMA computes the exponential moving average across the whole series,
// seeded with the first value, k = 2/(period+1)
func EMA(values []float64, period int) float64 {
	if len(values) == 0 {
		return 0
	}
	k := 2.0 / float64(period+1)
	ema := values[0]
	for _, v := range values[1:] {
		ema = v*k + ema*(1-k)
	}
	return ema
}

// macdHistoryBars is the trailing sample count over which the MACD-line
// history is reconstructed for the signal line
const macdHistoryBars = 35

// MACD computes the MACD(12,26,9) line and signal. The signal is the EMA9
// of a MACD-line history rebuilt over the trailing 35 samples.
func MACD(closes []float64) (line, signal float64, err error) {
	if len(closes) < macdHistoryBars {
		return 0, 0, &models.InsufficientDataError{Window: "MACD", Need: macdHistoryBars, Got: len(closes)}
	}

	history := make([]float64, 0, macdHistoryBars)
	for i := len(closes) - macdHistoryBars; i < len(closes); i++ {
		window := closes[:i+1]
		history = append(history, EMA(window, 12)-EMA(window, 26))
	}

	line = history[len(history)-1]
	signal = EMA(history, 9)
	return line, signal, nil
}

// BollingerBands computes upper/middle/lower bands from the trailing period
// closes using the population standard deviation
func BollingerBands(closes []float64, period int, stdDevs float64) (upper, middle, lower float64, err error) {
	if len(closes) < period {
		return 0, 0, 0, &models.InsufficientDataError{Window: "Bollinger", Need: period, Got: len(closes)}
	}

	window := closes[len(closes)-period:]
	var sum float64
	for _, v := range window {
		sum += v
	}
	middle = sum / float64(period)

	var variance float64
	for _, v := range window {
		d := v - middle
		variance += d * d
	}
	std := math.Sqrt(variance / float64(period))

	upper = middle + stdDevs*std
	lower = middle - stdDevs*std
	return upper, middle, lower, nil
}

// ATR computes the Wilder true-range average over the trailing period bars
func ATR(highs, lows, closes []float64, period int) (float64, error) {
	if len(closes) < period+1 {
		return 0, &models.InsufficientDataError{Window: "ATR", Need: period + 1, Got: len(closes)}
	}

	var sum float64
	start := len(closes) - period
	for i := start; i < len(closes); i++ {
		tr := math.Max(highs[i]-lows[i],
			math.Max(math.Abs(highs[i]-closes[i-1]), math.Abs(lows[i]-closes[i-1])))
		sum += tr
	}
	return sum / float64(period), nil
}

// adxNeutral is reported when the series is too short or directionless
const adxNeutral = 25

// ADX computes the directional-movement index from +DM/-DM sums over the
// trailing period bars. Defaults to a neutral 25 when fewer than period+1
// bars exist or when no directional movement is measurable.
func ADX(highs, lows, closes []float64, period int) float64 {
	if len(closes) < period+1 {
		return adxNeutral
	}

	var plusDM, minusDM, trSum float64
	start := len(closes) - period
	for i := start; i < len(closes); i++ {
		upMove := highs[i] - highs[i-1]
		downMove := lows[i-1] - lows[i]

		if upMove > downMove && upMove > 0 {
			plusDM += upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM += downMove
		}

		tr := math.Max(highs[i]-lows[i],
			math.Max(math.Abs(highs[i]-closes[i-1]), math.Abs(lows[i]-closes[i-1])))
		trSum += tr
	}

	if trSum == 0 {
		return adxNeutral
	}

	plusDI := 100 * plusDM / trSum
	minusDI := 100 * minusDM / trSum
	if plusDI+minusDI == 0 {
		return adxNeutral
	}

	return 100 * math.Abs(plusDI-minusDI) / (plusDI + minusDI)
}

// Stochastic computes %K from the trailing period high/low extremes.
// A flat window (high == low) reports a neutral 50.
func Stochastic(highs, lows, closes []float64, period int) (float64, error) {
	if len(closes) < period {
		return 0, &models.InsufficientDataError{Window: "Stochastic", Need: period, Got: len(closes)}
	}

	highest := highs[len(highs)-period]
	lowest := lows[len(lows)-period]
	for i := len(closes) - period + 1; i < len(closes); i++ {
		highest = math.Max(highest, highs[i])
		lowest = math.Min(lowest, lows[i])
	}

	if highest == lowest {
		return 50, nil
	}
	return 100 * (closes[len(closes)-1] - lowest) / (highest - lowest), nil
}

// VWAP computes the volume-weighted average of the typical price over the
// trailing period bars. Falls back to the latest close on zero volume.
func VWAP(highs, lows, closes, volumes []float64, period int) (float64, error) {
	if len(closes) < period {
		return 0, &models.InsufficientDataError{Window: "VWAP", Need: period, Got: len(closes)}
	}

	var priceVolume, volumeSum float64
	for i := len(closes) - period; i < len(closes); i++ {
		typical := (highs[i] + lows[i] + closes[i]) / 3
		priceVolume += typical * volumes[i]
		volumeSum += volumes[i]
	}

	if volumeSum == 0 {
		return closes[len(closes)-1], nil
	}
	return priceVolume / volumeSum, nil
}

// OBV computes the cumulative signed-volume balance over the whole series
func OBV(closes, volumes []float64) float64 {
	var obv float64
	for i := 1; i < len(closes); i++ {
		switch {
		case closes[i] > closes[i-1]:
			obv += volumes[i]
		case closes[i] < closes[i-1]:
			obv -= volumes[i]
		}
	}
	return obv
}

// VolumeRatio computes latest volume relative to its trailing period average
func VolumeRatio(volumes []float64, period int) (float64, error) {
	if len(volumes) < period {
		return 0, &models.InsufficientDataError{Window: "volume ratio", Need: period, Got: len(volumes)}
	}

	var sum float64
	for i := len(volumes) - period; i < len(volumes); i++ {
		sum += volumes[i]
	}
	avg := sum / float64(period)
	if avg == 0 {
		return 0, nil
	}
	return volumes[len(volumes)-1] / avg, nil
}
