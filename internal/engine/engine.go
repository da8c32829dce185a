package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quantex/signal-engine/internal/adapters/config"
	"github.com/quantex/signal-engine/internal/adapters/oracle"
	"github.com/quantex/signal-engine/internal/agents"
	"github.com/quantex/signal-engine/internal/correlation"
	"github.com/quantex/signal-engine/internal/indicators"
	"github.com/quantex/signal-engine/internal/regime"
	"github.com/quantex/signal-engine/internal/risk"
	"github.com/quantex/signal-engine/pkg/logger"
	"github.com/quantex/signal-engine/pkg/models"
)

// Engine is the point-in-time analysis pipeline: features, regime, agent
// consensus and position sizing for one symbol, plus basket correlation
// analysis. It holds no mutable cross-call state; identical inputs produce
// identical outputs (up to result ID and timestamp).
type Engine struct {
	cfg        *config.Config
	calculator *indicators.Calculator
	classifier *regime.Classifier
	sizer      *risk.Sizer
	pool       *agents.Pool
	detector   *correlation.Detector
}

// Options customizes engine construction
type Options struct {
	// Advisor overrides the oracle advisor built from config (tests)
	Advisor *oracle.Advisor
}

// New creates new analysis engine from configuration
func New(cfg *config.Config, opts *Options) *Engine {
	var advisor *oracle.Advisor
	if opts != nil && opts.Advisor != nil {
		advisor = opts.Advisor
	} else {
		advisor = oracle.NewAdvisor(oracle.NewOpenAIProvider(&cfg.Oracle))
	}

	return &Engine{
		cfg:        cfg,
		calculator: indicators.NewCalculator(),
		classifier: regime.NewClassifier(),
		sizer:      risk.NewSizer(&cfg.Engine),
		pool:       agents.NewPool(agents.DefaultAgents(&cfg.Agents, advisor), cfg.Agents.Timeout),
		detector:   correlation.NewDetector(&cfg.Correlation, advisor),
	}
}

// AnalyzeRequest carries the optional context for one analysis call
type AnalyzeRequest struct {
	Symbol         string
	History        []models.Candle
	AccountBalance float64
	Fundamental    *models.FundamentalContext
	Options        *models.OptionsContext
}

// Analyze runs the single-asset pipeline: indicators, regime, agent
// fan-out, consensus, position sizing
func (e *Engine) Analyze(ctx context.Context, req *AnalyzeRequest) (*models.EnhancedAnalysisResult, error) {
	if len(req.History) < e.cfg.Engine.MinBars {
		return nil, &models.InsufficientDataError{Window: "price history", Need: e.cfg.Engine.MinBars, Got: len(req.History)}
	}
	if req.AccountBalance <= 0 {
		return nil, &models.DegenerateInputError{Field: "accountBalance", Reason: "must be positive"}
	}
	if err := validateTimestamps(req.History); err != nil {
		return nil, err
	}

	input, err := e.buildInput(req)
	if err != nil {
		return nil, err
	}

	verdicts := e.pool.Run(ctx, input)
	consensus, err := agents.Aggregate(verdicts)
	if err != nil {
		return nil, fmt.Errorf("consensus aggregation failed: %w", err)
	}

	sizing := e.sizeFromHistory(input.Returns, req.AccountBalance)

	logger.Info("analysis completed",
		zap.String("symbol", req.Symbol),
		zap.String("signal", string(consensus.Signal)),
		zap.Float64("confidence", consensus.Confidence),
		zap.String("regime", string(input.Regime.Type)),
	)

	return &models.EnhancedAnalysisResult{
		ID:         uuid.New(),
		Symbol:     req.Symbol,
		Price:      input.Price,
		Indicators: input.Indicators,
		Regime:     input.Regime,
		Consensus:  consensus,
		Sizing:     sizing,
		AnalyzedAt: time.Now(),
	}, nil
}

// AnalyzeSingleAgent runs one named agent against the shared snapshot
func (e *Engine) AnalyzeSingleAgent(ctx context.Context, agentName string, req *AnalyzeRequest) (*models.AgentVerdict, error) {
	if len(req.History) < e.cfg.Engine.MinBars {
		return nil, &models.InsufficientDataError{Window: "price history", Need: e.cfg.Engine.MinBars, Got: len(req.History)}
	}
	if err := validateTimestamps(req.History); err != nil {
		return nil, err
	}

	input, err := e.buildInput(req)
	if err != nil {
		return nil, err
	}

	for _, agent := range e.pool.Agents() {
		if agent.Name() != agentName {
			continue
		}
		if !agent.Applicable(input) {
			return nil, &models.DegenerateInputError{Field: "agent", Reason: fmt.Sprintf("agent %q cannot score this input", agentName)}
		}
		verdict := agent.Analyze(ctx, input)
		return &verdict, nil
	}

	return nil, &models.DegenerateInputError{Field: "agent", Reason: fmt.Sprintf("unknown agent: %q", agentName)}
}

// AnalyzeCorrelations runs the basket pipeline
func (e *Engine) AnalyzeCorrelations(ctx context.Context, assets []models.AssetPriceData, opts models.CorrelationOptions) (*models.CorrelationAnalysisResult, error) {
	return e.detector.Analyze(ctx, assets, opts)
}

// SizePosition exposes the position sizer directly for callers with their
// own performance statistics
func (e *Engine) SizePosition(winRate, avgWin, avgLoss, accountBalance float64) (*models.PositionSizing, error) {
	return e.sizer.Calculate(winRate, avgWin, avgLoss, accountBalance)
}

// buildInput assembles the immutable per-call snapshot shared by all agents
func (e *Engine) buildInput(req *AnalyzeRequest) (*models.AnalysisInput, error) {
	n := len(req.History)
	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	volumes := make([]float64, n)
	for i, candle := range req.History {
		closes[i] = models.ToFloat64(candle.Close)
		highs[i] = models.ToFloat64(candle.High)
		lows[i] = models.ToFloat64(candle.Low)
		volumes[i] = models.ToFloat64(candle.Volume)
	}

	iv, err := e.calculator.CalculateRaw(closes, volumes, highs, lows)
	if err != nil {
		return nil, err
	}

	price := closes[n-1]
	marketRegime := e.classifier.ClassifyTechnical(iv, price, highs, lows)

	return &models.AnalysisInput{
		Symbol:      req.Symbol,
		Price:       price,
		Indicators:  iv,
		Regime:      marketRegime,
		Closes:      closes,
		Highs:       highs,
		Lows:        lows,
		Volumes:     volumes,
		Returns:     indicators.Returns(closes),
		Fundamental: req.Fundamental,
		Options:     req.Options,
	}, nil
}

// sizeFromHistory derives the Kelly inputs from the supplied bar returns.
// A one-sided history (no wins or no losses) cannot support a Kelly
// estimate; the recommendation is then a conservative zero size.
func (e *Engine) sizeFromHistory(returns []float64, accountBalance float64) *models.PositionSizing {
	var winSum, lossSum float64
	var wins, losses int
	for _, r := range returns {
		if r > 0 {
			winSum += r
			wins++
		} else if r < 0 {
			lossSum += -r
			losses++
		}
	}

	if wins == 0 || losses == 0 {
		return &models.PositionSizing{
			KellyFraction:   0,
			RecommendedSize: 0,
			MaxRisk:         accountBalance * e.cfg.Engine.MaxRiskPercent,
			RiskRewardRatio: 0,
		}
	}

	winRate := float64(wins) / float64(wins+losses)
	avgWin := winSum / float64(wins)
	avgLoss := lossSum / float64(losses)

	sizing, err := e.sizer.Calculate(winRate, avgWin, avgLoss, accountBalance)
	if err != nil {
		logger.Warn("position sizing degenerate, recommending zero size", zap.Error(err))
		return &models.PositionSizing{
			MaxRisk: accountBalance * e.cfg.Engine.MaxRiskPercent,
		}
	}
	return sizing
}

// validateTimestamps enforces strictly increasing candle timestamps
func validateTimestamps(history []models.Candle) error {
	for i := 1; i < len(history); i++ {
		if !history[i].Timestamp.After(history[i-1].Timestamp) {
			return &models.DegenerateInputError{
				Field:  "history",
				Reason: fmt.Sprintf("timestamps must be strictly increasing (violation at index %d)", i),
			}
		}
	}
	return nil
}
