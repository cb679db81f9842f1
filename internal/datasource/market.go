package datasource

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/creasty/defaults"
	"github.com/rs/zerolog"

	"github.com/seenimoa/fincurator/pkg/models"
	"github.com/seenimoa/fincurator/pkg/utils"
)

// Point is one dated value of a daily series.
type Point struct {
	Date  time.Time
	Value float64
}

// MarketOptions configures the market-context series.
type MarketOptions struct {
	VIXSymbol      string  `mapstructure:"vix_symbol"      default:"^VIX"`
	DXYSymbol      string  `mapstructure:"dxy_symbol"      default:"DX-Y.NYB"`
	TreasurySymbol string  `mapstructure:"treasury_symbol" default:"^TNX"`
	SP500Symbol    string  `mapstructure:"sp500_symbol"    default:"^GSPC"`
	TreasuryScale  float64 `mapstructure:"treasury_scale"  default:"1"`
	// CorrelationWindow is the number of shared daily returns in the rolling
	// stock/S&P 500 correlation.
	CorrelationWindow int `mapstructure:"correlation_window" default:"20"`
}

// closeSource is the subset of YahooChart the fetcher needs.
type closeSource interface {
	Closes(ctx context.Context, symbol string, from, to time.Time) ([]Point, error)
}

// MarketContextFetcher assembles the market-context snapshot for a run.
type MarketContextFetcher struct {
	chart closeSource
	opts  MarketOptions
	log   zerolog.Logger
}

// NewMarketContextFetcher creates a fetcher, applying defaults to unset options.
func NewMarketContextFetcher(chart closeSource, opts MarketOptions, log zerolog.Logger) *MarketContextFetcher {
	_ = defaults.Set(&opts)
	return &MarketContextFetcher{
		chart: chart,
		opts:  opts,
		log:   log.With().Str("component", "market").Logger(),
	}
}

// Context fetches each market series over [from, to] and combines them with
// the stock quotes. A failing series is logged and left out; the result is
// sparse and never an error.
func (m *MarketContextFetcher) Context(ctx context.Context, stock []models.Quote, from, to time.Time) []models.MarketContext {
	fetch := func(name, symbol string) []Point {
		points, err := m.chart.Closes(ctx, symbol, from, to)
		if err != nil {
			m.log.Warn().Err(err).Str("series", name).Str("symbol", symbol).Msg("market series unavailable")
			return nil
		}
		return points
	}

	vix := fetch(models.ColVIX, m.opts.VIXSymbol)
	dxy := fetch(models.ColDXY, m.opts.DXYSymbol)
	tnx := scale(fetch(models.ColTreasury10Y, m.opts.TreasurySymbol), m.opts.TreasuryScale)
	spx := fetch("sp500", m.opts.SP500Symbol)

	out := BuildMarketContext(vix, dxy, tnx, spx, stock, m.opts.CorrelationWindow)
	m.log.Info().Int("dates", len(out)).Msg("market context built")
	return out
}

func scale(points []Point, factor float64) []Point {
	if factor == 1 {
		return points
	}
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = Point{Date: p.Date, Value: p.Value * factor}
	}
	return out
}

// BuildMarketContext merges the series into one MarketContext per date that
// carries at least one value, ascending. sp500_correlation is the rolling
// Pearson correlation of stock and S&P 500 daily returns over `window`
// shared dates; it is nil until the window fills.
func BuildMarketContext(vix, dxy, tnx, spx []Point, stock []models.Quote, window int) []models.MarketContext {
	byDate := make(map[string]*models.MarketContext)
	get := func(t time.Time) *models.MarketContext {
		key := utils.DateKey(t)
		mc, ok := byDate[key]
		if !ok {
			mc = &models.MarketContext{Date: utils.DateOf(t)}
			byDate[key] = mc
		}
		return mc
	}

	for _, p := range vix {
		get(p.Date).VIX = models.Float(p.Value)
	}
	for _, p := range dxy {
		get(p.Date).DXY = models.Float(p.Value)
	}
	for _, p := range tnx {
		get(p.Date).Treasury10Y = models.Float(p.Value)
	}
	for _, p := range SP500Correlation(stock, spx, window) {
		get(p.Date).SP500Correlation = models.Float(p.Value)
	}

	out := make([]models.MarketContext, 0, len(byDate))
	for _, mc := range byDate {
		out = append(out, *mc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// SP500Correlation computes the rolling correlation of daily returns between
// the stock and the index on the dates both trade. Only defined points are
// returned.
func SP500Correlation(stock []models.Quote, index []Point, window int) []Point {
	if window < 2 {
		return nil
	}
	idx := make(map[string]float64, len(index))
	for _, p := range index {
		idx[utils.DateKey(p.Date)] = p.Value
	}

	// Shared closes, ascending.
	type pair struct {
		date         time.Time
		stock, index float64
	}
	var shared []pair
	for _, q := range stock {
		if v, ok := idx[utils.DateKey(q.Date)]; ok {
			shared = append(shared, pair{date: utils.DateOf(q.Date), stock: q.Close, index: v})
		}
	}
	sort.Slice(shared, func(i, j int) bool { return shared[i].date.Before(shared[j].date) })

	var out []Point
	var xs, ys []float64
	for i := 1; i < len(shared); i++ {
		prev, cur := shared[i-1], shared[i]
		if prev.stock == 0 || prev.index == 0 {
			xs, ys = xs[:0], ys[:0]
			continue
		}
		xs = append(xs, (cur.stock-prev.stock)/prev.stock)
		ys = append(ys, (cur.index-prev.index)/prev.index)
		if len(xs) > window {
			xs, ys = xs[1:], ys[1:]
		}
		if len(xs) < window {
			continue
		}
		if r, ok := pearson(xs, ys); ok {
			out = append(out, Point{Date: cur.date, Value: r})
		}
	}
	return out
}

// pearson returns the correlation coefficient of xs and ys. ok is false when
// either series has zero variance.
func pearson(xs, ys []float64) (float64, bool) {
	n := float64(len(xs))
	var sx, sy float64
	for i := range xs {
		sx += xs[i]
		sy += ys[i]
	}
	mx, my := sx/n, sy/n

	var cov, vx, vy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0, false
	}
	r := cov / math.Sqrt(vx*vy)
	return math.Max(-1, math.Min(1, r)), true
}
