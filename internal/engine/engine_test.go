package engine

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/quantex/signal-engine/internal/adapters/config"
	"github.com/quantex/signal-engine/pkg/models"
)

// generateCandles builds an oscillating history with strictly increasing
// hourly timestamps
func generateCandles(n int) []models.Candle {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, n)
	for i := 0; i < n; i++ {
		price := 100 + 5*math.Sin(float64(i)*0.3)
		candles[i] = models.Candle{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      models.NewDecimal(price - 0.2),
			High:      models.NewDecimal(price + 1),
			Low:       models.NewDecimal(price - 1),
			Close:     models.NewDecimal(price),
			Volume:    models.NewDecimal(1000 + 50*float64(i%5)),
		}
	}
	return candles
}

func risingCandles(n int) []models.Candle {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, n)
	for i := 0; i < n; i++ {
		price := 100 + float64(i)
		candles[i] = models.Candle{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      models.NewDecimal(price),
			High:      models.NewDecimal(price + 0.5),
			Low:       models.NewDecimal(price - 0.5),
			Close:     models.NewDecimal(price),
			Volume:    models.NewDecimal(1000),
		}
	}
	return candles
}

func newTestEngine() *Engine {
	return New(config.Default(), nil)
}

func TestAnalyzeEndToEnd(t *testing.T) {
	eng := newTestEngine()

	result, err := eng.Analyze(context.Background(), &AnalyzeRequest{
		Symbol:         "BTC/USDT",
		History:        generateCandles(60),
		AccountBalance: 10000,
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if result.ID == uuid.Nil {
		t.Error("result should carry a generated ID")
	}
	if result.Symbol != "BTC/USDT" {
		t.Errorf("Symbol = %q", result.Symbol)
	}
	if result.Indicators == nil {
		t.Fatal("missing indicator vector")
	}
	if result.Regime.Type == "" {
		t.Error("missing regime classification")
	}
	if result.Consensus == nil {
		t.Fatal("missing consensus")
	}
	if !result.Consensus.Signal.Valid() {
		t.Errorf("invalid consensus signal: %s", result.Consensus.Signal)
	}
	// Oracle is disabled by default: no options context means five verdicts
	if len(result.Consensus.Verdicts) != 5 {
		t.Errorf("expected 5 verdicts, got %d", len(result.Consensus.Verdicts))
	}
	if result.Sizing == nil {
		t.Fatal("missing position sizing")
	}
	if result.Sizing.KellyFraction < 0 || result.Sizing.KellyFraction > 0.02 {
		t.Errorf("Kelly fraction outside [0, 0.02]: %f", result.Sizing.KellyFraction)
	}
	if result.Sizing.MaxRisk != 200 {
		t.Errorf("MaxRisk = %f, want 200", result.Sizing.MaxRisk)
	}
}

func TestAnalyzeWithOptionsContext(t *testing.T) {
	eng := newTestEngine()

	result, err := eng.Analyze(context.Background(), &AnalyzeRequest{
		Symbol:         "AAPL",
		History:        generateCandles(60),
		AccountBalance: 10000,
		Options: &models.OptionsContext{
			Delta: 0.65, Gamma: 0.03, Theta: -0.05,
			ImpliedVolatility: 0.4, IVRank: 60, PutCallRatio: 1.0,
			UnderlyingPrice: 100, StrikePrice: 100, DaysToExpiry: 30,
		},
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(result.Consensus.Verdicts) != 9 {
		t.Errorf("expected 9 verdicts with an options context, got %d", len(result.Consensus.Verdicts))
	}
}

func TestAnalyzeDeterministicForSameInput(t *testing.T) {
	eng := newTestEngine()
	req := &AnalyzeRequest{
		Symbol:         "BTC/USDT",
		History:        generateCandles(60),
		AccountBalance: 10000,
	}

	first, err := eng.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	second, err := eng.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if first.Consensus.Signal != second.Consensus.Signal {
		t.Errorf("signal not reproducible: %s vs %s", first.Consensus.Signal, second.Consensus.Signal)
	}
	if math.Abs(first.Consensus.WeightedScore-second.Consensus.WeightedScore) > 1e-12 {
		t.Errorf("weighted score not reproducible: %f vs %f", first.Consensus.WeightedScore, second.Consensus.WeightedScore)
	}
	if first.Sizing.KellyFraction != second.Sizing.KellyFraction {
		t.Errorf("sizing not reproducible: %f vs %f", first.Sizing.KellyFraction, second.Sizing.KellyFraction)
	}
}

func TestAnalyzeRejectsBadInput(t *testing.T) {
	eng := newTestEngine()
	ctx := context.Background()

	var insufficient *models.InsufficientDataError
	_, err := eng.Analyze(ctx, &AnalyzeRequest{Symbol: "X", History: generateCandles(10), AccountBalance: 10000})
	if !errors.As(err, &insufficient) {
		t.Errorf("short history: expected InsufficientDataError, got %v", err)
	}

	var degenerate *models.DegenerateInputError
	_, err = eng.Analyze(ctx, &AnalyzeRequest{Symbol: "X", History: generateCandles(60), AccountBalance: 0})
	if !errors.As(err, &degenerate) {
		t.Errorf("zero balance: expected DegenerateInputError, got %v", err)
	}

	// Duplicate timestamp breaks strict ordering
	history := generateCandles(60)
	history[30].Timestamp = history[29].Timestamp
	_, err = eng.Analyze(ctx, &AnalyzeRequest{Symbol: "X", History: history, AccountBalance: 10000})
	if !errors.As(err, &degenerate) {
		t.Errorf("duplicate timestamp: expected DegenerateInputError, got %v", err)
	}
}

func TestAnalyzeOneSidedHistorySizesToZero(t *testing.T) {
	eng := newTestEngine()

	// Monotonic rise: no losing bars, no Kelly estimate
	result, err := eng.Analyze(context.Background(), &AnalyzeRequest{
		Symbol:         "UP",
		History:        risingCandles(60),
		AccountBalance: 10000,
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if result.Sizing.KellyFraction != 0 || result.Sizing.RecommendedSize != 0 {
		t.Errorf("one-sided history should size to zero, got %+v", result.Sizing)
	}
	if result.Sizing.MaxRisk != 200 {
		t.Errorf("MaxRisk = %f, want 200", result.Sizing.MaxRisk)
	}
}

func TestAnalyzeSingleAgentReportsOversold(t *testing.T) {
	eng := newTestEngine()

	// Steady decline over 100 bars pins RSI at the floor
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	history := make([]models.Candle, 100)
	for i := range history {
		price := 200 - float64(i)
		history[i] = models.Candle{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      models.NewDecimal(price + 0.5),
			High:      models.NewDecimal(price + 1),
			Low:       models.NewDecimal(price - 1),
			Close:     models.NewDecimal(price),
			Volume:    models.NewDecimal(1000),
		}
	}

	verdict, err := eng.AnalyzeSingleAgent(context.Background(), "technical", &AnalyzeRequest{
		Symbol:  "DOWN",
		History: history,
	})
	if err != nil {
		t.Fatalf("AnalyzeSingleAgent failed: %v", err)
	}

	if !strings.Contains(verdict.Reasoning, "RSI oversold (<30)") {
		t.Errorf("reasoning should mention the oversold RSI, got %q", verdict.Reasoning)
	}
}

func TestAnalyzeSingleAgent(t *testing.T) {
	eng := newTestEngine()
	req := &AnalyzeRequest{
		Symbol:         "BTC/USDT",
		History:        generateCandles(60),
		AccountBalance: 10000,
	}

	verdict, err := eng.AnalyzeSingleAgent(context.Background(), "technical", req)
	if err != nil {
		t.Fatalf("AnalyzeSingleAgent failed: %v", err)
	}
	if verdict.AgentID != "technical" {
		t.Errorf("AgentID = %q, want technical", verdict.AgentID)
	}
	if !verdict.Signal.Valid() {
		t.Errorf("invalid signal: %s", verdict.Signal)
	}

	var degenerate *models.DegenerateInputError
	_, err = eng.AnalyzeSingleAgent(context.Background(), "palm_reader", req)
	if !errors.As(err, &degenerate) {
		t.Errorf("unknown agent: expected DegenerateInputError, got %v", err)
	}

	// Options agents are not applicable without an options context
	_, err = eng.AnalyzeSingleAgent(context.Background(), "options_greeks", req)
	if !errors.As(err, &degenerate) {
		t.Errorf("inapplicable agent: expected DegenerateInputError, got %v", err)
	}
}

func TestAnalyzeCorrelationsDelegates(t *testing.T) {
	eng := newTestEngine()

	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 100 + 10*math.Sin(float64(i)*0.4)
	}

	result, err := eng.AnalyzeCorrelations(context.Background(), []models.AssetPriceData{
		{Symbol: "BTC", AssetType: models.AssetCrypto, Prices: prices},
		{Symbol: "SPY", AssetType: models.AssetStock, Prices: prices},
	}, models.CorrelationOptions{})
	if err != nil {
		t.Fatalf("AnalyzeCorrelations failed: %v", err)
	}
	if result.Current.Size() != 2 {
		t.Errorf("matrix size = %d, want 2", result.Current.Size())
	}
}

func TestSizePosition(t *testing.T) {
	eng := newTestEngine()

	sizing, err := eng.SizePosition(0.6, 200, 100, 10000)
	if err != nil {
		t.Fatalf("SizePosition failed: %v", err)
	}
	if sizing.KellyFraction != 0.02 || sizing.RecommendedSize != 200 {
		t.Errorf("unexpected sizing: %+v", sizing)
	}
}
