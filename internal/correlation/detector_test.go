package correlation

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/quantex/signal-engine/internal/adapters/config"
	"github.com/quantex/signal-engine/pkg/models"
)

func newTestDetector() *Detector {
	return NewDetector(&config.Default().Correlation, nil)
}

// oscillating builds a price series with nonzero return variance
func oscillating(n int, phase float64) []float64 {
	prices := make([]float64, n)
	for i := 0; i < n; i++ {
		prices[i] = 100 + 10*math.Sin(float64(i)*0.4+phase)
	}
	return prices
}

func TestAnalyzeDetectsCriticalBreakdown(t *testing.T) {
	d := newTestDetector()

	// Identical series correlate perfectly; the crypto-stock baseline is 0.3,
	// so the delta is 0.7
	prices := oscillating(30, 0)
	assets := []models.AssetPriceData{
		{Symbol: "BTC", AssetType: models.AssetCrypto, Prices: prices},
		{Symbol: "SPY", AssetType: models.AssetStock, Prices: prices},
	}

	result, err := d.Analyze(context.Background(), assets, models.CorrelationOptions{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(result.Breakdowns) != 1 {
		t.Fatalf("expected 1 breakdown, got %d", len(result.Breakdowns))
	}

	b := result.Breakdowns[0]
	if math.Abs(b.CurrentCorr-1.0) > 1e-9 {
		t.Errorf("identical series should correlate at 1.0, got %f", b.CurrentCorr)
	}
	if math.Abs(b.HistoricalCorr-0.3) > 1e-9 {
		t.Errorf("crypto-stock baseline should be 0.3, got %f", b.HistoricalCorr)
	}
	if math.Abs(b.Delta-0.7) > 1e-9 {
		t.Errorf("Delta = %f, want 0.7", b.Delta)
	}
	if b.Significance != models.SignificanceCritical {
		t.Errorf("Significance = %s, want critical", b.Significance)
	}
	if b.Cause == "" || b.Recommendation == "" {
		t.Error("breakdown should carry a cause and recommendation")
	}
}

func TestAnalyzeMatrixInvariants(t *testing.T) {
	d := newTestDetector()

	assets := []models.AssetPriceData{
		{Symbol: "BTC", AssetType: models.AssetCrypto, Prices: oscillating(30, 0)},
		{Symbol: "ETH", AssetType: models.AssetCrypto, Prices: oscillating(30, 1.5)},
		{Symbol: "SPY", AssetType: models.AssetStock, Prices: oscillating(30, 3)},
	}

	result, err := d.Analyze(context.Background(), assets, models.CorrelationOptions{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	m := result.Current
	n := m.Size()
	if n != 3 {
		t.Fatalf("matrix size = %d, want 3", n)
	}

	for i := 0; i < n; i++ {
		if m.At(i, i) != 1 {
			t.Errorf("diagonal [%d][%d] = %f, want 1", i, i, m.At(i, i))
		}
		for j := 0; j < n; j++ {
			if m.At(i, j) != m.At(j, i) {
				t.Errorf("matrix not symmetric at [%d][%d]: %f vs %f", i, j, m.At(i, j), m.At(j, i))
			}
			if m.At(i, j) < -1 || m.At(i, j) > 1 {
				t.Errorf("correlation out of range at [%d][%d]: %f", i, j, m.At(i, j))
			}
		}
	}
}

func TestAnalyzeRejectsMalformedBaskets(t *testing.T) {
	d := newTestDetector()
	ctx := context.Background()

	var malformed *models.MalformedMatrixError

	_, err := d.Analyze(ctx, []models.AssetPriceData{
		{Symbol: "BTC", AssetType: models.AssetCrypto, Prices: oscillating(30, 0)},
	}, models.CorrelationOptions{})
	if !errors.As(err, &malformed) {
		t.Errorf("single asset: expected MalformedMatrixError, got %v", err)
	}

	_, err = d.Analyze(ctx, []models.AssetPriceData{
		{Symbol: "BTC", AssetType: models.AssetCrypto, Prices: oscillating(30, 0)},
		{Symbol: "ETH", AssetType: models.AssetCrypto, Prices: oscillating(25, 0)},
	}, models.CorrelationOptions{})
	if !errors.As(err, &malformed) {
		t.Errorf("length mismatch: expected MalformedMatrixError, got %v", err)
	}

	_, err = d.Analyze(ctx, []models.AssetPriceData{
		{Symbol: "BTC", AssetType: models.AssetCrypto, Prices: oscillating(30, 0)},
		{Symbol: "ETH", AssetType: models.AssetCrypto, Prices: oscillating(30, 1)},
	}, models.CorrelationOptions{
		Historical: models.NewCorrelationMatrix([]string{"BTC", "ETH", "SPY"}),
	})
	if !errors.As(err, &malformed) {
		t.Errorf("historical size mismatch: expected MalformedMatrixError, got %v", err)
	}
}

func TestAnalyzeRejectsShortSeries(t *testing.T) {
	d := newTestDetector()

	_, err := d.Analyze(context.Background(), []models.AssetPriceData{
		{Symbol: "BTC", AssetType: models.AssetCrypto, Prices: oscillating(10, 0)},
		{Symbol: "ETH", AssetType: models.AssetCrypto, Prices: oscillating(10, 1)},
	}, models.CorrelationOptions{})

	var insufficient *models.InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
}

func TestAnalyzeEmitsRegimeChangeSignal(t *testing.T) {
	d := newTestDetector()

	// All three series identical: every pair at correlation 1
	prices := oscillating(30, 0)
	assets := []models.AssetPriceData{
		{Symbol: "BTC", AssetType: models.AssetCrypto, Prices: prices},
		{Symbol: "ETH", AssetType: models.AssetCrypto, Prices: prices},
		{Symbol: "SPY", AssetType: models.AssetStock, Prices: prices},
	}

	result, err := d.Analyze(context.Background(), assets, models.CorrelationOptions{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	var regimeChange *models.CrossAssetSignal
	for i := range result.Signals {
		if result.Signals[i].Type == models.SignalRegimeChange {
			regimeChange = &result.Signals[i]
		}
	}
	if regimeChange == nil {
		t.Fatal("expected a regime_change signal when every pair is highly correlated")
	}
	if regimeChange.Strength != 100 {
		t.Errorf("3/3 high-correlation pairs should saturate strength at 100, got %f", regimeChange.Strength)
	}

	// Signals are ranked by strength
	for i := 1; i < len(result.Signals); i++ {
		if result.Signals[i].Strength > result.Signals[i-1].Strength {
			t.Errorf("signals not sorted by strength at %d", i)
		}
	}
}

func TestPearson(t *testing.T) {
	a := []float64{0.01, -0.02, 0.03, -0.01, 0.02}

	if got := Pearson(a, a); math.Abs(got-1) > 1e-12 {
		t.Errorf("self correlation = %f, want 1", got)
	}

	inverted := make([]float64, len(a))
	for i, v := range a {
		inverted[i] = -v
	}
	if got := Pearson(a, inverted); math.Abs(got+1) > 1e-12 {
		t.Errorf("inverted correlation = %f, want -1", got)
	}

	flat := []float64{0.01, 0.01, 0.01, 0.01, 0.01}
	if got := Pearson(a, flat); got != 0 {
		t.Errorf("zero-variance series should correlate at 0, got %f", got)
	}

	if got := Pearson(a, a[:3]); got != 0 {
		t.Errorf("mismatched lengths should correlate at 0, got %f", got)
	}
}

func TestSignificanceBandsAreMonotonic(t *testing.T) {
	rank := map[models.BreakdownSignificance]int{
		models.SignificanceLow:      0,
		models.SignificanceMedium:   1,
		models.SignificanceHigh:     2,
		models.SignificanceCritical: 3,
	}

	prev := -1
	for delta := 0.0; delta <= 1.0; delta += 0.01 {
		cur := rank[significance(delta)]
		if cur < prev {
			t.Fatalf("significance decreased at |delta|=%.2f", delta)
		}
		prev = cur
	}

	if significance(0.5) != models.SignificanceCritical {
		t.Error("0.5 should be critical")
	}
	if significance(0.45) != models.SignificanceHigh {
		t.Error("0.45 should be high")
	}
	if significance(0.35) != models.SignificanceMedium {
		t.Error("0.35 should be medium")
	}
	if significance(0.26) != models.SignificanceLow {
		t.Error("0.26 should be low")
	}
}

func TestPairKey(t *testing.T) {
	if got := pairKey("stock", "crypto"); got != "crypto-stock" {
		t.Errorf("pairKey = %q, want crypto-stock", got)
	}
	if pairKey("bond", "stock") != pairKey("stock", "bond") {
		t.Error("pairKey should be order independent")
	}
}
