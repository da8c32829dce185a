package oracle

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/quantex/signal-engine/pkg/models"
)

const advisorySystemPrompt = `You are an expert market analyst. You receive a
structured market snapshot and reply with a single JSON object, no prose
outside the JSON:
{
  "recommendation": "strong_buy" | "buy" | "hold" | "sell" | "strong_sell",
  "confidence": 0-100,
  "reasoning": "your detailed analysis",
  "key_factors": ["factor1", "factor2"],
  "price_target": optional number
}`

const correlationSystemPrompt = `You are an expert in cross-asset correlation
analysis. You receive one asset pair's current and historical correlation and
reply with a single JSON object, no prose outside the JSON:
{
  "predicted_correlation": -1.0 to 1.0,
  "direction": "increase" | "decrease" | "stable",
  "confidence": 0-100,
  "reasoning": "your analysis"
}`

// buildFundamentalPrompt builds the fundamental-analysis request
func buildFundamentalPrompt(input *models.AnalysisInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Provide a fundamental analysis for %s.\n\n", input.Symbol)
	fmt.Fprintf(&b, "Current price: %.4f\n", input.Price)

	if f := input.Fundamental; f != nil {
		fmt.Fprintf(&b, "52-week high: %.4f\n", f.High52Week)
		fmt.Fprintf(&b, "52-week low: %.4f\n", f.Low52Week)
		fmt.Fprintf(&b, "Market cap: %.0f\n", f.MarketCap)
	}

	fmt.Fprintf(&b, "Market regime: %s (confidence %.2f)\n", input.Regime.Type, input.Regime.Confidence)
	b.WriteString("\nFocus on valuation relative to the 52-week range and overall positioning.")
	return b.String()
}

// buildSentimentPrompt builds the sentiment-analysis request
func buildSentimentPrompt(input *models.AnalysisInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Provide a market-sentiment analysis for %s.\n\n", input.Symbol)
	fmt.Fprintf(&b, "Current price: %.4f\n", input.Price)

	if iv := input.Indicators; iv != nil {
		fmt.Fprintf(&b, "RSI(14): %.1f\n", iv.RSI14)
		fmt.Fprintf(&b, "MACD histogram: %.4f\n", iv.MACDHistogram)
		fmt.Fprintf(&b, "Volume ratio vs 20-bar average: %.2f\n", iv.VolumeRatio)
	}

	fmt.Fprintf(&b, "Market regime: %s\n", input.Regime.Type)
	b.WriteString("\nFocus on crowd positioning, momentum chasing and fear/greed balance.")
	return b.String()
}

// buildCorrelationPrompt builds the pair-correlation forecast request
func buildCorrelationPrompt(pairA, pairB string, current, historical float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Forecast the correlation between %s and %s.\n\n", pairA, pairB)
	fmt.Fprintf(&b, "Current correlation: %.3f\n", current)
	fmt.Fprintf(&b, "Historical correlation: %.3f\n", historical)
	fmt.Fprintf(&b, "Change: %+.3f\n", current-historical)
	return b.String()
}

// parseAdvisory parses and validates the oracle's analysis response.
// Any shape deviation is an error; callers fall back silently.
func parseAdvisory(content string) (*models.AdvisoryOpinion, error) {
	jsonStr := extractJSON(content)

	var response struct {
		Recommendation string   `json:"recommendation"`
		Confidence     float64  `json:"confidence"`
		Reasoning      string   `json:"reasoning"`
		KeyFactors     []string `json:"key_factors"`
		PriceTarget    float64  `json:"price_target"`
	}

	if err := json.Unmarshal([]byte(jsonStr), &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	signal := models.Signal(strings.ToLower(strings.TrimSpace(response.Recommendation)))
	if !signal.Valid() {
		return nil, fmt.Errorf("invalid recommendation: %q", response.Recommendation)
	}

	if response.Confidence < 0 || response.Confidence > 100 {
		return nil, fmt.Errorf("invalid confidence: %f", response.Confidence)
	}

	if response.Reasoning == "" {
		return nil, fmt.Errorf("missing reasoning")
	}

	return &models.AdvisoryOpinion{
		Recommendation: signal,
		Confidence:     response.Confidence,
		Reasoning:      response.Reasoning,
		KeyFactors:     response.KeyFactors,
		PriceTarget:    response.PriceTarget,
	}, nil
}

// parseCorrelationForecast parses and validates the pair-forecast response
func parseCorrelationForecast(content string) (*models.CorrelationForecast, error) {
	jsonStr := extractJSON(content)

	var response struct {
		PredictedCorrelation float64 `json:"predicted_correlation"`
		Direction            string  `json:"direction"`
		Confidence           float64 `json:"confidence"`
		Reasoning            string  `json:"reasoning"`
	}

	if err := json.Unmarshal([]byte(jsonStr), &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	if response.PredictedCorrelation < -1 || response.PredictedCorrelation > 1 {
		return nil, fmt.Errorf("invalid predicted correlation: %f", response.PredictedCorrelation)
	}

	direction := strings.ToLower(strings.TrimSpace(response.Direction))
	if direction != "increase" && direction != "decrease" && direction != "stable" {
		return nil, fmt.Errorf("invalid direction: %q", response.Direction)
	}

	if response.Confidence < 0 || response.Confidence > 100 {
		return nil, fmt.Errorf("invalid confidence: %f", response.Confidence)
	}

	return &models.CorrelationForecast{
		PredictedCorrelation: response.PredictedCorrelation,
		Direction:            direction,
		Confidence:           response.Confidence,
		Reasoning:            response.Reasoning,
	}, nil
}

// extractJSON extracts JSON from text that might contain markdown or extra content
func extractJSON(text string) string {
	// Remove markdown code blocks
	re := regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")
	matches := re.FindStringSubmatch(text)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return strings.TrimSpace(text[start : end+1])
	}

	return strings.TrimSpace(text)
}
