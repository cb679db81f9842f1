// Package technical implements the indicator engine: deterministic transforms
// from an ordered []models.Quote into one models.IndicatorRow per quote.
// Undefined values (not enough history) are nil, never zero.
package technical

import (
	"math"

	"github.com/creasty/defaults"

	"github.com/seenimoa/fincurator/pkg/models"
	"github.com/seenimoa/fincurator/pkg/utils"
)

// Params configures indicator windows. Zero fields take the `default` tag.
type Params struct {
	VolatilityWindow int     `mapstructure:"volatility_window" default:"10"`
	RSIPeriod        int     `mapstructure:"rsi_period"        default:"14"`
	MACDFast         int     `mapstructure:"macd_fast"         default:"12"`
	MACDSlow         int     `mapstructure:"macd_slow"         default:"26"`
	MACDSignal       int     `mapstructure:"macd_signal"       default:"9"`
	StochKPeriod     int     `mapstructure:"stoch_k_period"    default:"14"`
	StochDPeriod     int     `mapstructure:"stoch_d_period"    default:"3"`
	WilliamsPeriod   int     `mapstructure:"williams_period"   default:"14"`
	BollingerPeriod  int     `mapstructure:"bollinger_period"  default:"20"`
	BollingerMult    float64 `mapstructure:"bollinger_std"     default:"2"`
}

// DefaultParams returns Params with every default applied.
func DefaultParams() Params {
	var p Params
	_ = defaults.Set(&p)
	return p
}

// Compute calculates every indicator for the quote sequence.
// It fails only on an empty sequence or an invalid price field.
func Compute(quotes []models.Quote, p Params) ([]models.IndicatorRow, error) {
	if len(quotes) == 0 {
		return nil, models.FatalInput("empty quote sequence")
	}
	for _, q := range quotes {
		if err := models.Validate(q); err != nil {
			return nil, models.FatalInput("quote %s: %v", utils.DateKey(q.Date), err)
		}
	}
	if err := defaults.Set(&p); err != nil {
		return nil, err
	}

	closes := extractCloses(quotes)
	returns := DailyReturns(closes)
	volatility := RollingStd(returns, p.VolatilityWindow)
	sma5, sma10, sma20 := SMA(closes, 5), SMA(closes, 10), SMA(closes, 20)
	rsi := RSI(closes, p.RSIPeriod)
	macd, signal, hist := MACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal)
	stochK, stochD := Stochastic(quotes, p.StochKPeriod, p.StochDPeriod)
	williams := WilliamsR(quotes, p.WilliamsPeriod)
	upper, middle, lower := BollingerBands(closes, p.BollingerPeriod, p.BollingerMult)

	rows := make([]models.IndicatorRow, len(quotes))
	for i, q := range quotes {
		q.Date = utils.DateOf(q.Date)
		rows[i] = models.IndicatorRow{
			Quote:           q,
			DailyReturn:     returns[i],
			Volatility:      volatility[i],
			SMA5:            sma5[i],
			SMA10:           sma10[i],
			SMA20:           sma20[i],
			RSI:             rsi[i],
			MACD:            macd[i],
			MACDSignal:      signal[i],
			MACDHistogram:   hist[i],
			StochK:          stochK[i],
			StochD:          stochD[i],
			WilliamsR:       williams[i],
			BollingerUpper:  upper[i],
			BollingerMiddle: middle[i],
			BollingerLower:  lower[i],
		}
	}
	return rows, nil
}

// DailyReturns calculates (close[t] - close[t-1]) / close[t-1].
// The first point, and any point after a zero close, is nil.
func DailyReturns(closes []float64) Series {
	out := make(Series, len(closes))
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		out[i] = ptr((closes[i] - closes[i-1]) / closes[i-1])
	}
	return out
}

// RollingStd is the sample standard deviation of the trailing window.
// A point is defined only when every value in its window is defined.
func RollingStd(s Series, window int) Series {
	n := len(s)
	out := make(Series, n)
	if window < 2 {
		return out
	}
	for i := window - 1; i < n; i++ {
		vals, ok := defined(s[i-window+1 : i+1])
		if !ok {
			continue
		}
		out[i] = ptr(sampleStddev(vals, avg(vals)))
	}
	return out
}

// RSI calculates the Relative Strength Index from the simple mean of gains
// and losses over the last `period` price changes. Returns values 0–100;
// a window with no losses is 100.
func RSI(closes []float64, period int) Series {
	if period <= 0 {
		period = 14
	}
	n := len(closes)
	rsi := make(Series, n)
	if n < period+1 {
		return rsi
	}

	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	var sumGain, sumLoss float64
	for i := 1; i <= period; i++ {
		sumGain += gains[i]
		sumLoss += losses[i]
	}
	for i := period; i < n; i++ {
		if i > period {
			sumGain += gains[i] - gains[i-period]
			sumLoss += losses[i] - losses[i-period]
		}
		avgGain := math.Max(sumGain, 0) / float64(period)
		avgLoss := math.Max(sumLoss, 0) / float64(period)
		if avgLoss <= 1e-12 {
			rsi[i] = ptr(100)
			continue
		}
		rs := avgGain / avgLoss
		rsi[i] = ptr(clamp(100-(100/(1+rs)), 0, 100))
	}

	return rsi
}

// MACD calculates the Moving Average Convergence Divergence line, its signal
// line and the histogram. Defaults: fast=12, slow=26, signal=9.
func MACD(closes []float64, fast, slow, signal int) (macd, sig, hist Series) {
	if fast <= 0 {
		fast = 12
	}
	if slow <= 0 {
		slow = 26
	}
	if signal <= 0 {
		signal = 9
	}

	n := len(closes)
	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)

	macd = make(Series, n)
	for i := 0; i < n; i++ {
		if fastEMA[i] != nil && slowEMA[i] != nil {
			macd[i] = ptr(*fastEMA[i] - *slowEMA[i])
		}
	}

	sig = emaCalc(macd, signal)
	hist = make(Series, n)
	for i := 0; i < n; i++ {
		if macd[i] != nil && sig[i] != nil {
			hist[i] = ptr(*macd[i] - *sig[i])
		}
	}
	return macd, sig, hist
}

// Stochastic calculates %K over kPeriod and %D as the dPeriod SMA of %K.
// A zero high-low range gives a neutral %K of 50.
func Stochastic(quotes []models.Quote, kPeriod, dPeriod int) (k, d Series) {
	if kPeriod <= 0 {
		kPeriod = 14
	}
	if dPeriod <= 0 {
		dPeriod = 3
	}
	n := len(quotes)
	k = make(Series, n)
	for i := kPeriod - 1; i < n; i++ {
		hh, ll := highLow(quotes[i-kPeriod+1 : i+1])
		rng := hh - ll
		if rng == 0 {
			k[i] = ptr(50)
			continue
		}
		k[i] = ptr(clamp(100*(quotes[i].Close-ll)/rng, 0, 100))
	}
	d = SMASeries(k, dPeriod)
	return k, d
}

// WilliamsR calculates Williams %R over period. Returns values -100–0;
// a zero high-low range gives -50.
func WilliamsR(quotes []models.Quote, period int) Series {
	if period <= 0 {
		period = 14
	}
	n := len(quotes)
	out := make(Series, n)
	for i := period - 1; i < n; i++ {
		hh, ll := highLow(quotes[i-period+1 : i+1])
		rng := hh - ll
		if rng == 0 {
			out[i] = ptr(-50)
			continue
		}
		out[i] = ptr(clamp(-100*(hh-quotes[i].Close)/rng, -100, 0))
	}
	return out
}

// BollingerBands calculates the upper, middle and lower bands.
// Default: period=20, stddev multiplier=2.
func BollingerBands(closes []float64, period int, mult float64) (upper, middle, lower Series) {
	if period <= 0 {
		period = 20
	}
	if mult <= 0 {
		mult = 2.0
	}

	n := len(closes)
	upper, middle, lower = make(Series, n), make(Series, n), make(Series, n)
	for i := period - 1; i < n; i++ {
		window := closes[i-period+1 : i+1]
		mean := avg(window)
		sd := sampleStddev(window, mean)
		upper[i] = ptr(mean + mult*sd)
		middle[i] = ptr(mean)
		lower[i] = ptr(mean - mult*sd)
	}
	return upper, middle, lower
}

// --- helper functions ---

func ptr(v float64) *float64 {
	return &v
}

func toSeries(data []float64) Series {
	s := make(Series, len(data))
	for i := range data {
		s[i] = ptr(data[i])
	}
	return s
}

// defined unwraps a window, reporting false if any entry is nil.
func defined(s Series) ([]float64, bool) {
	out := make([]float64, len(s))
	for i, v := range s {
		if v == nil {
			return nil, false
		}
		out[i] = *v
	}
	return out, true
}

func extractCloses(quotes []models.Quote) []float64 {
	closes := make([]float64, len(quotes))
	for i, q := range quotes {
		closes[i] = q.Close
	}
	return closes
}

func highLow(quotes []models.Quote) (high, low float64) {
	high, low = quotes[0].High, quotes[0].Low
	for _, q := range quotes[1:] {
		high = math.Max(high, q.High)
		low = math.Min(low, q.Low)
	}
	return high, low
}

func avg(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// sampleStddev uses the n-1 denominator.
func sampleStddev(data []float64, mean float64) float64 {
	if len(data) < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range data {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(data)-1))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
