package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// NewDecimal creates decimal from float64
func NewDecimal(value float64) decimal.Decimal {
	return decimal.NewFromFloat(value)
}

// Candle represents OHLCV candlestick data
type Candle struct {
	Timestamp time.Time       `json:"timestamp"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    decimal.Decimal `json:"volume"`
}

// AssetType classifies an asset for typical-correlation lookup
type AssetType string

const (
	AssetStock     AssetType = "stock"
	AssetCrypto    AssetType = "crypto"
	AssetBond      AssetType = "bond"
	AssetCommodity AssetType = "commodity"
	AssetForex     AssetType = "forex"
)

// AssetPriceData is one asset's price series in a correlation basket
type AssetPriceData struct {
	Symbol    string    `json:"symbol"`
	AssetType AssetType `json:"asset_type"`
	Prices    []float64 `json:"prices"`
}

// FundamentalContext carries the valuation snapshot supplied by the
// market-data collaborator for fundamental analysis
type FundamentalContext struct {
	CurrentPrice float64 `json:"current_price"`
	High52Week   float64 `json:"high_52_week"`
	Low52Week    float64 `json:"low_52_week"`
	MarketCap    float64 `json:"market_cap"`
}

// OptionsContext carries the greeks and volatility snapshot for an
// options position; nil when the analysis target carries no options leg
type OptionsContext struct {
	Delta             float64 `json:"delta"`
	Gamma             float64 `json:"gamma"`
	Theta             float64 `json:"theta"`
	Vega              float64 `json:"vega"`
	ImpliedVolatility float64 `json:"implied_volatility"`
	IVRank            float64 `json:"iv_rank"`
	PutCallRatio      float64 `json:"put_call_ratio"`
	OpenInterest      float64 `json:"open_interest"`
	UnderlyingPrice   float64 `json:"underlying_price"`
	StrikePrice       float64 `json:"strike_price"`
	DaysToExpiry      int     `json:"days_to_expiry"`
}

// AnalysisInput is the shared snapshot every agent scores from.
// It is assembled once per call and never mutated by agents.
type AnalysisInput struct {
	Symbol      string
	Price       float64
	Indicators  *IndicatorVector
	Regime      Regime
	Closes      []float64
	Highs       []float64
	Lows        []float64
	Volumes     []float64
	Returns     []float64
	Fundamental *FundamentalContext
	Options     *OptionsContext
}
