package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config represents application configuration
type Config struct {
	Engine      EngineConfig
	Agents      AgentsConfig
	Oracle      OracleConfig
	Correlation CorrelationConfig
	Logging     LoggingConfig
}

// EngineConfig represents core analysis parameters
type EngineConfig struct {
	MinBars        int     `envconfig:"ENGINE_MIN_BARS" default:"50"`
	MaxRiskPercent float64 `envconfig:"ENGINE_MAX_RISK_PERCENT" default:"0.02"`
}

// AgentsConfig represents agent pool parameters. Weights are base weights;
// the pool renormalizes the weights of the agents participating in one call
// so they sum to 1.0.
type AgentsConfig struct {
	Timeout time.Duration `envconfig:"AGENTS_TIMEOUT" default:"20s"`

	TechnicalWeight    float64 `envconfig:"AGENTS_TECHNICAL_WEIGHT" default:"0.25"`
	FundamentalWeight  float64 `envconfig:"AGENTS_FUNDAMENTAL_WEIGHT" default:"0.20"`
	SentimentWeight    float64 `envconfig:"AGENTS_SENTIMENT_WEIGHT" default:"0.15"`
	RiskWeight         float64 `envconfig:"AGENTS_RISK_WEIGHT" default:"0.20"`
	QuantitativeWeight float64 `envconfig:"AGENTS_QUANTITATIVE_WEIGHT" default:"0.20"`

	OptionsGreeksWeight     float64 `envconfig:"AGENTS_OPTIONS_GREEKS_WEIGHT" default:"0.30"`
	OptionsVolatilityWeight float64 `envconfig:"AGENTS_OPTIONS_VOLATILITY_WEIGHT" default:"0.25"`
	OptionsStrategyWeight   float64 `envconfig:"AGENTS_OPTIONS_STRATEGY_WEIGHT" default:"0.25"`
	OptionsRiskWeight       float64 `envconfig:"AGENTS_OPTIONS_RISK_WEIGHT" default:"0.20"`
}

// OracleConfig represents the advisory oracle (LLM) connection.
// The oracle is optional; when disabled the oracle-backed agents always use
// their fallback verdicts.
type OracleConfig struct {
	Enabled bool          `envconfig:"ORACLE_ENABLED" default:"false"`
	APIKey  string        `envconfig:"ORACLE_API_KEY" required:"false"`
	BaseURL string        `envconfig:"ORACLE_BASE_URL" default:"https://api.openai.com/v1"`
	Model   string        `envconfig:"ORACLE_MODEL" default:"gpt-4-turbo-preview"`
	Timeout time.Duration `envconfig:"ORACLE_TIMEOUT" default:"30s"`
}

// CorrelationConfig represents breakdown-detection parameters.
// TypicalCorrelations keys are sorted asset-type pairs joined with a dash
// (e.g. "crypto-stock"); used as the historical reference when the caller
// supplies no reference matrix.
type CorrelationConfig struct {
	BreakdownThreshold  float64 `envconfig:"CORRELATION_BREAKDOWN_THRESHOLD" default:"0.25"`
	PairSignalThreshold float64 `envconfig:"CORRELATION_PAIR_SIGNAL_THRESHOLD" default:"0.4"`
	HighCorrelation     float64 `envconfig:"CORRELATION_HIGH_THRESHOLD" default:"0.6"`
	MinBars             int     `envconfig:"CORRELATION_MIN_BARS" default:"20"`

	TypicalCorrelations map[string]float64 `envconfig:"CORRELATION_TYPICAL" default:"stock-stock:0.6,crypto-stock:0.3,bond-bond:0.8,bond-stock:-0.2,crypto-crypto:0.7,commodity-stock:0.2,bond-crypto:0.1,bond-commodity:0.1,commodity-crypto:0.25,commodity-commodity:0.5"`
	DefaultTypical      float64            `envconfig:"CORRELATION_TYPICAL_DEFAULT" default:"0.3"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	File  string `envconfig:"LOG_FILE" default:""`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration with all defaults applied and no
// environment lookups. Used by tests and library embedders.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			MinBars:        50,
			MaxRiskPercent: 0.02,
		},
		Agents: AgentsConfig{
			Timeout:                 20 * time.Second,
			TechnicalWeight:         0.25,
			FundamentalWeight:       0.20,
			SentimentWeight:         0.15,
			RiskWeight:              0.20,
			QuantitativeWeight:      0.20,
			OptionsGreeksWeight:     0.30,
			OptionsVolatilityWeight: 0.25,
			OptionsStrategyWeight:   0.25,
			OptionsRiskWeight:       0.20,
		},
		Oracle: OracleConfig{
			Enabled: false,
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4-turbo-preview",
			Timeout: 30 * time.Second,
		},
		Correlation: CorrelationConfig{
			BreakdownThreshold:  0.25,
			PairSignalThreshold: 0.4,
			HighCorrelation:     0.6,
			MinBars:             20,
			TypicalCorrelations: map[string]float64{
				"stock-stock":         0.6,
				"crypto-stock":        0.3,
				"bond-bond":           0.8,
				"bond-stock":          -0.2,
				"crypto-crypto":       0.7,
				"commodity-stock":     0.2,
				"bond-crypto":         0.1,
				"bond-commodity":      0.1,
				"commodity-crypto":    0.25,
				"commodity-commodity": 0.5,
			},
			DefaultTypical: 0.3,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	if c.Engine.MinBars < 50 {
		return fmt.Errorf("ENGINE_MIN_BARS must be at least 50, got %d", c.Engine.MinBars)
	}

	if c.Engine.MaxRiskPercent <= 0 || c.Engine.MaxRiskPercent > 1 {
		return fmt.Errorf("ENGINE_MAX_RISK_PERCENT must be in (0,1], got %f", c.Engine.MaxRiskPercent)
	}

	if c.Correlation.BreakdownThreshold <= 0 {
		return fmt.Errorf("CORRELATION_BREAKDOWN_THRESHOLD must be positive, got %f", c.Correlation.BreakdownThreshold)
	}

	if c.Oracle.Enabled && c.Oracle.APIKey == "" {
		return fmt.Errorf("ORACLE_API_KEY is required when ORACLE_ENABLED=true")
	}

	return nil
}
