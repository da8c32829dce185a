package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/quantex/signal-engine/internal/adapters/config"
	"github.com/quantex/signal-engine/internal/engine"
	"github.com/quantex/signal-engine/pkg/logger"
	"github.com/quantex/signal-engine/pkg/models"
)

// correlationRequest is the on-disk shape for -mode=correlation input
type correlationRequest struct {
	Assets     []models.AssetPriceData   `json:"assets"`
	Historical *models.CorrelationMatrix `json:"historical,omitempty"`
}

func main() {
	var (
		mode    = flag.String("mode", "analyze", "analyze | agent | correlation")
		symbol  = flag.String("symbol", "", "asset symbol (analyze/agent modes)")
		input   = flag.String("input", "", "path to input JSON (candles or correlation basket)")
		agent   = flag.String("agent", "", "agent ID for -mode=agent")
		balance = flag.Float64("balance", 10000, "account balance for position sizing")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "-input is required")
		os.Exit(1)
	}

	eng := engine.New(cfg, nil)
	ctx := context.Background()

	var result any
	switch *mode {
	case "analyze":
		result, err = runAnalyze(ctx, eng, *symbol, *input, *balance)
	case "agent":
		result, err = runAgent(ctx, eng, *symbol, *agent, *input)
	case "correlation":
		result, err = runCorrelation(ctx, eng, *input)
	default:
		err = fmt.Errorf("unknown mode: %q", *mode)
	}

	if err != nil {
		logger.Error("analysis failed", zap.String("mode", *mode), zap.Error(err))
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func runAnalyze(ctx context.Context, eng *engine.Engine, symbol, path string, balance float64) (any, error) {
	if symbol == "" {
		return nil, fmt.Errorf("-symbol is required for analyze mode")
	}

	candles, err := readCandles(path)
	if err != nil {
		return nil, err
	}

	return eng.Analyze(ctx, &engine.AnalyzeRequest{
		Symbol:         symbol,
		History:        candles,
		AccountBalance: balance,
	})
}

func runAgent(ctx context.Context, eng *engine.Engine, symbol, agent, path string) (any, error) {
	if symbol == "" || agent == "" {
		return nil, fmt.Errorf("-symbol and -agent are required for agent mode")
	}

	candles, err := readCandles(path)
	if err != nil {
		return nil, err
	}

	return eng.AnalyzeSingleAgent(ctx, agent, &engine.AnalyzeRequest{
		Symbol:  symbol,
		History: candles,
	})
}

func runCorrelation(ctx context.Context, eng *engine.Engine, path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	var req correlationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parse correlation basket: %w", err)
	}

	return eng.AnalyzeCorrelations(ctx, req.Assets, models.CorrelationOptions{
		Historical: req.Historical,
	})
}

func readCandles(path string) ([]models.Candle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	var candles []models.Candle
	if err := json.Unmarshal(data, &candles); err != nil {
		return nil, fmt.Errorf("parse candles: %w", err)
	}
	return candles, nil
}
