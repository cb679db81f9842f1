package models

import (
	"time"

	"github.com/google/uuid"
)

// Feature column names, in export order.
const (
	ColOpen             = "open"
	ColHigh             = "high"
	ColLow              = "low"
	ColClose            = "close"
	ColVolume           = "volume"
	ColDailyReturn      = "daily_return"
	ColVolatility       = "volatility"
	ColSMA5             = "sma_5"
	ColSMA10            = "sma_10"
	ColSMA20            = "sma_20"
	ColRSI              = "rsi"
	ColMACD             = "macd"
	ColMACDSignal       = "macd_signal"
	ColMACDHistogram    = "macd_histogram"
	ColStochK           = "stoch_k"
	ColStochD           = "stoch_d"
	ColWilliamsR        = "williams_r"
	ColBollingerUpper   = "bollinger_upper"
	ColBollingerMiddle  = "bollinger_middle"
	ColBollingerLower   = "bollinger_lower"
	ColVIX              = "vix"
	ColDXY              = "dxy"
	ColTreasury10Y      = "treasury_10y"
	ColSP500Correlation = "sp500_correlation"
	ColNewsCount        = "news_count"
	ColNewsRelevance    = "news_mean_relevance"
	ColNewsSentiment    = "news_mean_sentiment"
)

// FeatureColumns is the ordered list of numeric feature columns.
var FeatureColumns = []string{
	ColOpen, ColHigh, ColLow, ColClose, ColVolume,
	ColDailyReturn, ColVolatility, ColSMA5, ColSMA10, ColSMA20,
	ColRSI, ColMACD, ColMACDSignal, ColMACDHistogram,
	ColStochK, ColStochD, ColWilliamsR,
	ColBollingerUpper, ColBollingerMiddle, ColBollingerLower,
	ColVIX, ColDXY, ColTreasury10Y, ColSP500Correlation,
	ColNewsCount, ColNewsRelevance, ColNewsSentiment,
}

// MarketColumns are the columns filled from the market-context snapshot.
var MarketColumns = []string{ColVIX, ColDXY, ColTreasury10Y, ColSP500Correlation}

// PriceColumns must be present on every row for a table to be valid.
var PriceColumns = []string{ColOpen, ColHigh, ColLow, ColClose, ColVolume}

// Column is one named, nullable cell of a FeatureRow.
type Column struct {
	Name  string
	Value *float64
}

// QualityFlags annotates a FeatureRow with data-quality findings (column names).
type QualityFlags struct {
	Missing  []string `json:"missing,omitempty"`
	Outliers []string `json:"outliers,omitempty"`
	Stale    []string `json:"stale,omitempty"`
}

// Empty reports whether no flag is set.
func (q QualityFlags) Empty() bool {
	return len(q.Missing) == 0 && len(q.Outliers) == 0 && len(q.Stale) == 0
}

// FeatureRow is one date of the final, aligned feature table.
type FeatureRow struct {
	Date       time.Time          `json:"date"`
	Indicators IndicatorRow       `json:"indicators"`
	Market     MarketContext      `json:"market"`
	News       DailyNewsAggregate `json:"news"`
	Flags      QualityFlags       `json:"flags"`
}

// Columns returns the row's numeric cells in FeatureColumns order.
func (r FeatureRow) Columns() []Column {
	q := r.Indicators.Quote
	ind := r.Indicators
	return []Column{
		{ColOpen, Float(q.Open)},
		{ColHigh, Float(q.High)},
		{ColLow, Float(q.Low)},
		{ColClose, Float(q.Close)},
		{ColVolume, Float(float64(q.Volume))},
		{ColDailyReturn, ind.DailyReturn},
		{ColVolatility, ind.Volatility},
		{ColSMA5, ind.SMA5},
		{ColSMA10, ind.SMA10},
		{ColSMA20, ind.SMA20},
		{ColRSI, ind.RSI},
		{ColMACD, ind.MACD},
		{ColMACDSignal, ind.MACDSignal},
		{ColMACDHistogram, ind.MACDHistogram},
		{ColStochK, ind.StochK},
		{ColStochD, ind.StochD},
		{ColWilliamsR, ind.WilliamsR},
		{ColBollingerUpper, ind.BollingerUpper},
		{ColBollingerMiddle, ind.BollingerMiddle},
		{ColBollingerLower, ind.BollingerLower},
		{ColVIX, r.Market.VIX},
		{ColDXY, r.Market.DXY},
		{ColTreasury10Y, r.Market.Treasury10Y},
		{ColSP500Correlation, r.Market.SP500Correlation},
		{ColNewsCount, Float(float64(r.News.Count))},
		{ColNewsRelevance, Float(r.News.MeanRelevance)},
		{ColNewsSentiment, Float(r.News.MeanSentiment)},
	}
}

// Value returns the named cell, or nil when the column is unknown or null.
func (r FeatureRow) Value(name string) *float64 {
	for _, c := range r.Columns() {
		if c.Name == name {
			return c.Value
		}
	}
	return nil
}

// ValidationSummary reports table-level data quality.
type ValidationSummary struct {
	IsValid            bool           `json:"is_valid"`
	CompletenessRatio  float64        `json:"completeness_ratio"`
	TotalRows          int            `json:"total_rows"`
	TotalColumns       int            `json:"total_columns"`
	MissingValueCounts map[string]int `json:"missing_value_counts"`
	OutlierCounts      map[string]int `json:"outlier_counts"`
	StaleCounts        map[string]int `json:"stale_counts"`
}

// SourceStatus records how one news source fared during ingestion.
type SourceStatus struct {
	ID       string `json:"id"`
	Articles int    `json:"articles"`
	Error    string `json:"error,omitempty"`
}

// NewsStats counts what the scorer did with the raw article set.
type NewsStats struct {
	Received   int `json:"received"`
	Dropped    int `json:"dropped"`    // unparseable: no url, no timestamp or no text
	Duplicates int `json:"duplicates"` // removed by URL dedup
	Irrelevant int `json:"irrelevant"` // no relevance tier matched
	Scored     int `json:"scored"`
}

// Metadata describes one pipeline run.
type Metadata struct {
	RunID          uuid.UUID      `json:"run_id"`
	Symbol         string         `json:"symbol"`
	Exchange       Exchange       `json:"exchange"`
	WindowStart    time.Time      `json:"window_start"`
	WindowEnd      time.Time      `json:"window_end"`
	DaysRequested  int            `json:"days_requested"`
	DaysCollected  int            `json:"days_collected"`
	CollectionDate time.Time      `json:"collection_date"`
	Sources        []SourceStatus `json:"sources"`
	News           NewsStats      `json:"news"`
}

// Dataset is the complete output of a run: rows plus their validation summary.
type Dataset struct {
	Metadata Metadata          `json:"metadata"`
	Summary  ValidationSummary `json:"summary"`
	Rows     []FeatureRow      `json:"data"`
}
