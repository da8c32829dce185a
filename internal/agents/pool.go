package agents

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/quantex/signal-engine/internal/adapters/config"
	"github.com/quantex/signal-engine/internal/adapters/oracle"
	"github.com/quantex/signal-engine/pkg/logger"
	"github.com/quantex/signal-engine/pkg/models"
)

// Pool runs the agents that apply to an input concurrently and collects
// their verdicts. The pool holds no state between calls.
type Pool struct {
	agents  []Agent
	timeout time.Duration
}

// NewPool creates new agent pool
func NewPool(agents []Agent, timeout time.Duration) *Pool {
	return &Pool{agents: agents, timeout: timeout}
}

// DefaultAgents constructs the full agent set with configured base weights.
// The advisor may be disabled; oracle-backed agents then always fall back.
func DefaultAgents(cfg *config.AgentsConfig, advisor *oracle.Advisor) []Agent {
	return []Agent{
		NewTechnicalAgent(cfg.TechnicalWeight),
		NewFundamentalAgent(cfg.FundamentalWeight, advisor),
		NewSentimentAgent(cfg.SentimentWeight, advisor),
		NewRiskAgent(cfg.RiskWeight),
		NewQuantitativeAgent(cfg.QuantitativeWeight),
		NewOptionsGreeksAgent(cfg.OptionsGreeksWeight),
		NewOptionsVolatilityAgent(cfg.OptionsVolatilityWeight),
		NewOptionsStrategyAgent(cfg.OptionsStrategyWeight),
		NewOptionsRiskAgent(cfg.OptionsRiskWeight),
	}
}

// Run fans out the applicable agents, waits for every verdict (or its
// timeout fallback) and returns them sorted by agent ID. Verdict weights are
// renormalized so the participating pool sums to 1.0.
func (p *Pool) Run(ctx context.Context, input *models.AnalysisInput) []models.AgentVerdict {
	selected := make([]Agent, 0, len(p.agents))
	var totalWeight float64
	for _, agent := range p.agents {
		if agent.Applicable(input) {
			selected = append(selected, agent)
			totalWeight += agent.Weight()
		}
	}
	if len(selected) == 0 || totalWeight == 0 {
		return nil
	}

	results := make(chan models.AgentVerdict, len(selected))

	for _, agent := range selected {
		go func(a Agent, weight float64) {
			results <- p.runWithTimeout(ctx, a, weight, input)
		}(agent, agent.Weight()/totalWeight)
	}

	verdicts := make([]models.AgentVerdict, 0, len(selected))
	for i := 0; i < len(selected); i++ {
		verdicts = append(verdicts, <-results)
	}

	sort.Slice(verdicts, func(i, j int) bool {
		return verdicts[i].AgentID < verdicts[j].AgentID
	})

	logger.Debug("agent pool completed",
		zap.String("symbol", input.Symbol),
		zap.Int("agents", len(verdicts)),
	)

	return verdicts
}

// Agents returns the configured agents (for single-agent analysis)
func (p *Pool) Agents() []Agent {
	return p.agents
}

// runWithTimeout bounds one agent's execution. A slow agent must not block
// the whole response; its fallback verdict is substituted instead. Each
// agent gets its own derived context so a cancelled request stops in-flight
// oracle calls without touching other requests.
func (p *Pool) runWithTimeout(ctx context.Context, agent Agent, weight float64, input *models.AnalysisInput) models.AgentVerdict {
	agentCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	done := make(chan models.AgentVerdict, 1)
	go func() {
		verdict := agent.Analyze(agentCtx, input)
		verdict.Weight = weight
		done <- verdict
	}()

	select {
	case verdict := <-done:
		return verdict
	case <-agentCtx.Done():
		logger.Warn("agent timed out, substituting fallback verdict",
			zap.String("agent", agent.Name()),
			zap.String("symbol", input.Symbol),
			zap.Duration("timeout", p.timeout),
		)
		return fallbackVerdict(agent.Name(), weight)
	}
}
