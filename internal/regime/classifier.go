package regime

import (
	"fmt"
	"math"

	"github.com/quantex/signal-engine/pkg/models"
)

// Classification thresholds. The order of checks in both classifiers is a
// fixed decision table; volatility checks run before trend checks and the
// crisis/transition/normal checks must stay in this order.
const (
	highVolatilityPct = 15.0
	lowVolatilityPct  = 5.0
	trendADX          = 25.0

	crisisAvgCorr     = 0.7
	crisisChange      = 0.2
	transitionAvgCorr = 0.6
	transitionChange  = 0.15
	normalAvgCorr     = 0.3
	normalChange      = 0.1
)

// Confidence ceilings per correlation regime
const (
	crisisCeiling     = 0.95
	transitionCeiling = 0.90
	normalCeiling     = 0.85
	euphoriaCeiling   = 0.80
)

// Classifier derives market/correlation regimes from snapshots.
// Stateless; safe for concurrent use.
type Classifier struct{}

// NewClassifier creates new regime classifier
func NewClassifier() *Classifier {
	return &Classifier{}
}

// ClassifyTechnical selects the single-asset regime from the indicator
// snapshot, the latest price, and the trailing 20-bar high/low range
func (c *Classifier) ClassifyTechnical(iv *models.IndicatorVector, price float64, highs, lows []float64) models.Regime {
	volPct := rangePercent(price, highs, lows, 20)

	// Volatility checks take precedence over trend checks
	if volPct > highVolatilityPct {
		return models.Regime{
			Type:        models.RegimeHighVolatility,
			Confidence:  math.Min(0.9, volPct/30),
			Description: fmt.Sprintf("20-bar range %.1f%% of price exceeds %.0f%%", volPct, highVolatilityPct),
		}
	}
	if volPct < lowVolatilityPct {
		return models.Regime{
			Type:        models.RegimeLowVolatility,
			Confidence:  math.Min(0.9, 0.4+(lowVolatilityPct-volPct)/lowVolatilityPct*0.5),
			Description: fmt.Sprintf("20-bar range %.1f%% of price below %.0f%%", volPct, lowVolatilityPct),
		}
	}

	trend := trendScore(iv, price)

	if trend >= 2 && iv.ADX14 > trendADX {
		return models.Regime{
			Type:        models.RegimeBull,
			Confidence:  math.Min(0.9, 0.5+float64(trend)*0.1+(iv.ADX14-trendADX)/100),
			Description: fmt.Sprintf("price above moving averages (trend %+d) with ADX %.1f", trend, iv.ADX14),
		}
	}
	if trend <= -2 && iv.ADX14 > trendADX {
		return models.Regime{
			Type:        models.RegimeBear,
			Confidence:  math.Min(0.9, 0.5-float64(trend)*0.1+(iv.ADX14-trendADX)/100),
			Description: fmt.Sprintf("price below moving averages (trend %+d) with ADX %.1f", trend, iv.ADX14),
		}
	}

	return models.Regime{
		Type:        models.RegimeSideways,
		Confidence:  0.5,
		Description: fmt.Sprintf("no dominant trend (trend %+d, ADX %.1f)", trend, iv.ADX14),
	}
}

// ClassifyCorrelation selects the correlation regime from the current matrix
// and one historical reference matrix
func (c *Classifier) ClassifyCorrelation(current, historical *models.CorrelationMatrix) models.Regime {
	avgCorr := averageAbsCorrelation(current)
	avgChange := averageAbsChange(current, historical)

	switch {
	case avgCorr > crisisAvgCorr && avgChange > crisisChange:
		conf := math.Min(crisisCeiling, 0.5+(avgCorr-crisisAvgCorr)*1.5+(avgChange-crisisChange))
		return models.Regime{
			Type:        models.RegimeCrisis,
			Confidence:  conf,
			Description: fmt.Sprintf("correlations converging sharply (avg |corr| %.2f, avg change %.2f)", avgCorr, avgChange),
		}
	case avgCorr > transitionAvgCorr && avgChange > transitionChange:
		conf := math.Min(transitionCeiling, 0.5+(avgCorr-transitionAvgCorr)+(avgChange-transitionChange)*2)
		return models.Regime{
			Type:        models.RegimeTransition,
			Confidence:  conf,
			Description: fmt.Sprintf("correlation structure shifting (avg |corr| %.2f, avg change %.2f)", avgCorr, avgChange),
		}
	case avgCorr < normalAvgCorr && avgChange < normalChange:
		conf := math.Min(normalCeiling, 0.5+(normalAvgCorr-avgCorr)+(normalChange-avgChange)*2)
		return models.Regime{
			Type:        models.RegimeNormal,
			Confidence:  conf,
			Description: fmt.Sprintf("correlations near historical baseline (avg |corr| %.2f, avg change %.2f)", avgCorr, avgChange),
		}
	default:
		conf := math.Min(euphoriaCeiling, 0.4+avgCorr*0.3)
		return models.Regime{
			Type:        models.RegimeEuphoria,
			Confidence:  conf,
			Description: fmt.Sprintf("elevated co-movement without crisis signature (avg |corr| %.2f, avg change %.2f)", avgCorr, avgChange),
		}
	}
}

// trendScore scores price against EMA20/50/200, each contributing +/-1
func trendScore(iv *models.IndicatorVector, price float64) int {
	score := 0
	for _, ema := range []float64{iv.EMA20, iv.EMA50, iv.EMA200} {
		if price > ema {
			score++
		} else if price < ema {
			score--
		}
	}
	return score
}

// rangePercent is the trailing high-low range as a percentage of price
func rangePercent(price float64, highs, lows []float64, period int) float64 {
	if price == 0 || len(highs) == 0 || len(lows) == 0 {
		return 0
	}
	if len(highs) < period {
		period = len(highs)
	}

	highest := highs[len(highs)-period]
	lowest := lows[len(lows)-period]
	for i := len(highs) - period + 1; i < len(highs); i++ {
		highest = math.Max(highest, highs[i])
		lowest = math.Min(lowest, lows[i])
	}

	return (highest - lowest) / price * 100
}

// averageAbsCorrelation averages |corr| over the off-diagonal pairs
func averageAbsCorrelation(m *models.CorrelationMatrix) float64 {
	n := m.Size()
	if n < 2 {
		return 0
	}

	var sum float64
	var pairs int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sum += math.Abs(m.At(i, j))
			pairs++
		}
	}
	return sum / float64(pairs)
}

// averageAbsChange averages |current-historical| over the off-diagonal pairs
func averageAbsChange(current, historical *models.CorrelationMatrix) float64 {
	n := current.Size()
	if n < 2 || historical == nil || historical.Size() != n {
		return 0
	}

	var sum float64
	var pairs int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sum += math.Abs(current.At(i, j) - historical.At(i, j))
			pairs++
		}
	}
	return sum / float64(pairs)
}
