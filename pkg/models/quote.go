// Package models defines the core data structures used throughout fincurator.
package models

import "time"

// Quote is one trading day of OHLCV data for a single symbol.
// Date is always a UTC midnight timestamp.
type Quote struct {
	Date   time.Time `json:"date"   validate:"required"`
	Open   float64   `json:"open"   validate:"finite,gte=0"`
	High   float64   `json:"high"   validate:"finite,gte=0"`
	Low    float64   `json:"low"    validate:"finite,gte=0"`
	Close  float64   `json:"close"  validate:"finite,gte=0"`
	Volume int64     `json:"volume" validate:"gte=0"`
}

// Exchange identifies the venue a symbol trades on.
type Exchange string

const (
	ExchangeNYSE   Exchange = "NYSE"
	ExchangeNASDAQ Exchange = "NASDAQ"
	ExchangePSX    Exchange = "PSX"
	ExchangeCrypto Exchange = "CRYPTO"
)

// Exchanges lists every supported exchange.
var Exchanges = []Exchange{ExchangeNYSE, ExchangeNASDAQ, ExchangePSX, ExchangeCrypto}

// IndicatorRow holds the technical indicators computed for one Quote.
// A nil field means the indicator is undefined for that day (not enough history).
type IndicatorRow struct {
	Quote

	DailyReturn     *float64 `json:"daily_return"`
	Volatility      *float64 `json:"volatility"`
	SMA5            *float64 `json:"sma_5"`
	SMA10           *float64 `json:"sma_10"`
	SMA20           *float64 `json:"sma_20"`
	RSI             *float64 `json:"rsi"`
	MACD            *float64 `json:"macd"`
	MACDSignal      *float64 `json:"macd_signal"`
	MACDHistogram   *float64 `json:"macd_histogram"`
	StochK          *float64 `json:"stoch_k"`
	StochD          *float64 `json:"stoch_d"`
	WilliamsR       *float64 `json:"williams_r"`
	BollingerUpper  *float64 `json:"bollinger_upper"`
	BollingerMiddle *float64 `json:"bollinger_middle"`
	BollingerLower  *float64 `json:"bollinger_lower"`
}

// MarketContext is a sparse snapshot of market-wide series for one date.
type MarketContext struct {
	Date             time.Time `json:"date"`
	VIX              *float64  `json:"vix"`
	DXY              *float64  `json:"dxy"`
	Treasury10Y      *float64  `json:"treasury_10y"`
	SP500Correlation *float64  `json:"sp500_correlation"`
}

// Float returns a pointer to v. Used to build nullable indicator values.
func Float(v float64) *float64 {
	return &v
}
