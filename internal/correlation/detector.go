package correlation

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quantex/signal-engine/internal/adapters/config"
	"github.com/quantex/signal-engine/internal/adapters/oracle"
	"github.com/quantex/signal-engine/internal/indicators"
	"github.com/quantex/signal-engine/internal/regime"
	"github.com/quantex/signal-engine/pkg/logger"
	"github.com/quantex/signal-engine/pkg/models"
)

// Detector builds pairwise correlation matrices for an asset basket,
// compares them to a historical reference and emits breakdowns and
// cross-asset signals. Stateless; the matrix is rebuilt fully on every call.
type Detector struct {
	cfg        *config.CorrelationConfig
	classifier *regime.Classifier
	advisor    *oracle.Advisor
}

// NewDetector creates new correlation detector. The advisor is optional;
// when absent or disabled the oracle enrichment step is skipped.
func NewDetector(cfg *config.CorrelationConfig, advisor *oracle.Advisor) *Detector {
	return &Detector{
		cfg:        cfg,
		classifier: regime.NewClassifier(),
		advisor:    advisor,
	}
}

// Analyze runs the full basket analysis
func (d *Detector) Analyze(ctx context.Context, assets []models.AssetPriceData, opts models.CorrelationOptions) (*models.CorrelationAnalysisResult, error) {
	if len(assets) < 2 {
		return nil, &models.MalformedMatrixError{Reason: fmt.Sprintf("need at least 2 assets, got %d", len(assets))}
	}

	length := len(assets[0].Prices)
	for _, asset := range assets {
		if len(asset.Prices) != length {
			return nil, &models.MalformedMatrixError{
				Reason: fmt.Sprintf("price series length mismatch: %s has %d bars, %s has %d",
					assets[0].Symbol, length, asset.Symbol, len(asset.Prices)),
			}
		}
	}
	if length < d.cfg.MinBars {
		return nil, &models.InsufficientDataError{Window: "correlation basket", Need: d.cfg.MinBars, Got: length}
	}

	current := d.buildMatrix(assets)

	historical := opts.Historical
	if historical == nil {
		historical = d.typicalMatrix(assets)
	} else if historical.Size() != len(assets) {
		return nil, &models.MalformedMatrixError{
			Reason: fmt.Sprintf("historical matrix is %dx%d but basket has %d assets",
				historical.Size(), historical.Size(), len(assets)),
		}
	}

	threshold := opts.BreakdownThreshold
	if threshold <= 0 {
		threshold = d.cfg.BreakdownThreshold
	}

	breakdowns := d.detectBreakdowns(current, historical, threshold)
	signals := d.crossAssetSignals(current, historical)
	marketRegime := d.classifier.ClassifyCorrelation(current, historical)

	d.enrichTopBreakdown(ctx, breakdowns)

	logger.Info("correlation basket analyzed",
		zap.Int("assets", len(assets)),
		zap.String("regime", string(marketRegime.Type)),
		zap.Int("breakdowns", len(breakdowns)),
		zap.Int("signals", len(signals)),
	)

	return &models.CorrelationAnalysisResult{
		ID:         uuid.New(),
		Symbols:    current.Symbols,
		Current:    current,
		Historical: historical,
		Regime:     marketRegime,
		Breakdowns: breakdowns,
		Signals:    signals,
		AnalyzedAt: time.Now(),
	}, nil
}

// buildMatrix computes the pairwise Pearson matrix over return series
func (d *Detector) buildMatrix(assets []models.AssetPriceData) *models.CorrelationMatrix {
	symbols := make([]string, len(assets))
	returns := make([][]float64, len(assets))
	for i, asset := range assets {
		symbols[i] = asset.Symbol
		returns[i] = indicators.Returns(asset.Prices)
	}

	matrix := models.NewCorrelationMatrix(symbols)
	for i := 0; i < len(assets); i++ {
		for j := i + 1; j < len(assets); j++ {
			matrix.Set(i, j, Pearson(returns[i], returns[j]))
		}
	}
	return matrix
}

// Pearson computes the Pearson correlation coefficient between two aligned
// return series. Zero variance in either series yields 0.
func Pearson(returns1, returns2 []float64) float64 {
	if len(returns1) != len(returns2) || len(returns1) == 0 {
		return 0
	}

	n := float64(len(returns1))

	var sum1, sum2 float64
	for i := range returns1 {
		sum1 += returns1[i]
		sum2 += returns2[i]
	}
	mean1 := sum1 / n
	mean2 := sum2 / n

	var numerator, var1, var2 float64
	for i := range returns1 {
		diff1 := returns1[i] - mean1
		diff2 := returns2[i] - mean2
		numerator += diff1 * diff2
		var1 += diff1 * diff1
		var2 += diff2 * diff2
	}

	if var1 == 0 || var2 == 0 {
		return 0 // No variance = no correlation
	}

	return numerator / math.Sqrt(var1*var2)
}

// typicalMatrix builds the historical reference from the configured
// asset-type-pair correlation table
func (d *Detector) typicalMatrix(assets []models.AssetPriceData) *models.CorrelationMatrix {
	symbols := make([]string, len(assets))
	for i, asset := range assets {
		symbols[i] = asset.Symbol
	}

	matrix := models.NewCorrelationMatrix(symbols)
	for i := 0; i < len(assets); i++ {
		for j := i + 1; j < len(assets); j++ {
			matrix.Set(i, j, d.typicalCorrelation(assets[i].AssetType, assets[j].AssetType))
		}
	}
	return matrix
}

// typicalCorrelation looks up the baseline for an asset-type pair
func (d *Detector) typicalCorrelation(a, b models.AssetType) float64 {
	key := pairKey(string(a), string(b))
	if v, ok := d.cfg.TypicalCorrelations[key]; ok {
		return v
	}
	return d.cfg.DefaultTypical
}

// pairKey joins two asset types in sorted order
func pairKey(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + "-" + b
}

// detectBreakdowns emits a breakdown for every pair whose |delta| clears the
// threshold, sorted by descending |delta|
func (d *Detector) detectBreakdowns(current, historical *models.CorrelationMatrix, threshold float64) []models.Breakdown {
	var breakdowns []models.Breakdown

	n := current.Size()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			cur := current.At(i, j)
			hist := historical.At(i, j)
			delta := cur - hist

			if math.Abs(delta) < threshold {
				continue
			}

			b := models.Breakdown{
				PairA:          current.Symbols[i],
				PairB:          current.Symbols[j],
				HistoricalCorr: hist,
				CurrentCorr:    cur,
				Delta:          delta,
				Significance:   significance(math.Abs(delta)),
			}
			b.Cause, b.Recommendation = describeBreakdown(b)
			breakdowns = append(breakdowns, b)
		}
	}

	sort.Slice(breakdowns, func(i, j int) bool {
		return math.Abs(breakdowns[i].Delta) > math.Abs(breakdowns[j].Delta)
	})

	return breakdowns
}

// significance bands |delta|; larger deltas never map to a lower tier
func significance(absDelta float64) models.BreakdownSignificance {
	switch {
	case absDelta >= 0.5:
		return models.SignificanceCritical
	case absDelta >= 0.4:
		return models.SignificanceHigh
	case absDelta >= 0.3:
		return models.SignificanceMedium
	default:
		return models.SignificanceLow
	}
}

func describeBreakdown(b models.Breakdown) (cause, recommendation string) {
	if b.Delta > 0 {
		cause = fmt.Sprintf("Correlation between %s and %s strengthened from %.2f to %.2f, well beyond its historical baseline",
			b.PairA, b.PairB, b.HistoricalCorr, b.CurrentCorr)
		recommendation = fmt.Sprintf("Diversification benefit between %s and %s is eroding; reduce combined exposure or hedge the pair",
			b.PairA, b.PairB)
		return cause, recommendation
	}

	cause = fmt.Sprintf("Correlation between %s and %s broke down from %.2f to %.2f versus its historical baseline",
		b.PairA, b.PairB, b.HistoricalCorr, b.CurrentCorr)
	recommendation = fmt.Sprintf("The %s/%s relationship has decoupled; reassess hedges and spreads that rely on their co-movement",
		b.PairA, b.PairB)
	return cause, recommendation
}

// crossAssetSignals emits convergence/divergence per large-delta pair and a
// market-wide regime_change signal when high correlation dominates
func (d *Detector) crossAssetSignals(current, historical *models.CorrelationMatrix) []models.CrossAssetSignal {
	var signals []models.CrossAssetSignal

	n := current.Size()
	totalPairs := 0
	highCorrCount := 0

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			totalPairs++
			cur := current.At(i, j)
			delta := cur - historical.At(i, j)

			if math.Abs(cur) > d.cfg.HighCorrelation {
				highCorrCount++
			}

			if math.Abs(delta) <= d.cfg.PairSignalThreshold {
				continue
			}

			signalType := models.SignalDivergence
			verb := "diverging from"
			if delta > 0 {
				signalType = models.SignalConvergence
				verb = "converging toward"
			}

			signals = append(signals, models.CrossAssetSignal{
				Type:     signalType,
				PairA:    current.Symbols[i],
				PairB:    current.Symbols[j],
				Strength: math.Min(100, math.Abs(delta)*200),
				Description: fmt.Sprintf("%s and %s are %s each other (correlation %+.2f, historically %+.2f)",
					current.Symbols[i], current.Symbols[j], verb, cur, historical.At(i, j)),
			})
		}
	}

	if totalPairs > 0 && highCorrCount*2 > totalPairs {
		signals = append(signals, models.CrossAssetSignal{
			Type:     models.SignalRegimeChange,
			Strength: math.Min(100, float64(highCorrCount)/float64(totalPairs)*120),
			Description: fmt.Sprintf("%d of %d pairs show |correlation| above %.1f: market-wide regime shift",
				highCorrCount, totalPairs, d.cfg.HighCorrelation),
		})
	}

	sort.Slice(signals, func(i, j int) bool {
		return signals[i].Strength > signals[j].Strength
	})

	return signals
}

// enrichTopBreakdown asks the oracle where the most significant pair's
// correlation is heading. Best effort: any failure leaves the breakdown as is.
func (d *Detector) enrichTopBreakdown(ctx context.Context, breakdowns []models.Breakdown) {
	if len(breakdowns) == 0 || !d.advisor.Enabled() {
		return
	}

	top := &breakdowns[0]
	forecast, err := d.advisor.ForecastCorrelation(ctx, top.PairA, top.PairB, top.CurrentCorr, top.HistoricalCorr)
	if err != nil {
		return
	}

	top.Recommendation = fmt.Sprintf("%s. Oracle expects correlation to %s toward %+.2f (confidence %.0f%%)",
		top.Recommendation, forecast.Direction, forecast.PredictedCorrelation, forecast.Confidence)
}
