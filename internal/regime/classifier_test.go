package regime

import (
	"testing"

	"github.com/quantex/signal-engine/pkg/models"
)

func flatRange(n int, high, low float64) (highs, lows []float64) {
	highs = make([]float64, n)
	lows = make([]float64, n)
	for i := 0; i < n; i++ {
		highs[i] = high
		lows[i] = low
	}
	return highs, lows
}

func TestClassifyTechnicalVolatilityPrecedence(t *testing.T) {
	c := NewClassifier()

	// Strong bull alignment, but the 20% range must win
	iv := &models.IndicatorVector{EMA20: 95, EMA50: 90, EMA200: 80, ADX14: 40}
	highs, lows := flatRange(20, 110, 90)

	regime := c.ClassifyTechnical(iv, 100, highs, lows)
	if regime.Type != models.RegimeHighVolatility {
		t.Errorf("volatility must take precedence over trend, got %s", regime.Type)
	}
	if regime.Confidence > 0.9 {
		t.Errorf("confidence above ceiling: %f", regime.Confidence)
	}
}

func TestClassifyTechnicalLowVolatility(t *testing.T) {
	c := NewClassifier()

	iv := &models.IndicatorVector{EMA20: 100, EMA50: 100, EMA200: 100, ADX14: 15}
	highs, lows := flatRange(20, 101, 99)

	regime := c.ClassifyTechnical(iv, 100, highs, lows)
	if regime.Type != models.RegimeLowVolatility {
		t.Errorf("2%% range should classify as low volatility, got %s", regime.Type)
	}
}

func TestClassifyTechnicalBull(t *testing.T) {
	c := NewClassifier()

	iv := &models.IndicatorVector{EMA20: 95, EMA50: 90, EMA200: 85, ADX14: 30}
	highs, lows := flatRange(20, 104, 96)

	regime := c.ClassifyTechnical(iv, 100, highs, lows)
	if regime.Type != models.RegimeBull {
		t.Errorf("price above all EMAs with ADX 30 should be bull, got %s", regime.Type)
	}
	if regime.Confidence <= 0 || regime.Confidence > 0.9 {
		t.Errorf("confidence out of bounds: %f", regime.Confidence)
	}
}

func TestClassifyTechnicalBear(t *testing.T) {
	c := NewClassifier()

	iv := &models.IndicatorVector{EMA20: 105, EMA50: 110, EMA200: 115, ADX14: 30}
	highs, lows := flatRange(20, 104, 96)

	regime := c.ClassifyTechnical(iv, 100, highs, lows)
	if regime.Type != models.RegimeBear {
		t.Errorf("price below all EMAs with ADX 30 should be bear, got %s", regime.Type)
	}
}

func TestClassifyTechnicalSideways(t *testing.T) {
	c := NewClassifier()

	// Mixed EMA alignment cancels the trend score
	iv := &models.IndicatorVector{EMA20: 95, EMA50: 105, EMA200: 100, ADX14: 30}
	highs, lows := flatRange(20, 104, 96)

	regime := c.ClassifyTechnical(iv, 100, highs, lows)
	if regime.Type != models.RegimeSideways {
		t.Errorf("mixed alignment should be sideways, got %s", regime.Type)
	}
	if regime.Confidence != 0.5 {
		t.Errorf("sideways confidence should be 0.5, got %f", regime.Confidence)
	}

	// Strong alignment without trend strength also fails the trend gate
	iv = &models.IndicatorVector{EMA20: 95, EMA50: 90, EMA200: 85, ADX14: 15}
	regime = c.ClassifyTechnical(iv, 100, highs, lows)
	if regime.Type != models.RegimeSideways {
		t.Errorf("ADX below 25 should block the bull classification, got %s", regime.Type)
	}
}

// pairMatrix builds a 2-asset matrix with the given off-diagonal correlation
func pairMatrix(corr float64) *models.CorrelationMatrix {
	m := models.NewCorrelationMatrix([]string{"A", "B"})
	m.Set(0, 1, corr)
	return m
}

func TestClassifyCorrelationDecisionTable(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name       string
		current    float64
		historical float64
		want       models.RegimeType
		ceiling    float64
	}{
		{"crisis", 0.9, 0.5, models.RegimeCrisis, 0.95},
		{"transition", 0.65, 0.45, models.RegimeTransition, 0.90},
		{"normal", 0.2, 0.25, models.RegimeNormal, 0.85},
		{"euphoria", 0.5, 0.5, models.RegimeEuphoria, 0.80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			regime := c.ClassifyCorrelation(pairMatrix(tt.current), pairMatrix(tt.historical))
			if regime.Type != tt.want {
				t.Errorf("got %s, want %s", regime.Type, tt.want)
			}
			if regime.Confidence > tt.ceiling {
				t.Errorf("confidence %f exceeds ceiling %f", regime.Confidence, tt.ceiling)
			}
			if regime.Confidence <= 0 {
				t.Errorf("confidence should be positive, got %f", regime.Confidence)
			}
			if regime.Description == "" {
				t.Error("description should not be empty")
			}
		})
	}
}

func TestClassifyCorrelationCrisisHitsCeiling(t *testing.T) {
	c := NewClassifier()

	// Extreme convergence saturates the confidence formula
	regime := c.ClassifyCorrelation(pairMatrix(0.99), pairMatrix(0.1))
	if regime.Type != models.RegimeCrisis {
		t.Fatalf("got %s, want crisis", regime.Type)
	}
	if regime.Confidence != 0.95 {
		t.Errorf("saturated crisis confidence should clamp to 0.95, got %f", regime.Confidence)
	}
}
