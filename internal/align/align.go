// Package align merges the indicator, market-context and news tables into one
// row per trading date and reports data quality over the result.
package align

import (
	"sort"

	"github.com/creasty/defaults"
	"github.com/rs/zerolog"

	"github.com/seenimoa/fincurator/pkg/models"
	"github.com/seenimoa/fincurator/pkg/utils"
)

// Options configures alignment and validation.
type Options struct {
	// OutlierK is the IQR multiplier for outlier fences.
	OutlierK float64 `mapstructure:"outlier_k" default:"1.5" validate:"gt=0"`
	// OutlierColumns are the columns checked for outliers.
	OutlierColumns []string `mapstructure:"outlier_columns" default:"[\"daily_return\",\"volume\",\"volatility\",\"rsi\",\"news_count\"]"`
	// MinOutlierValues is the fewest non-null values a column needs before
	// outlier detection runs on it.
	MinOutlierValues int `mapstructure:"min_outlier_values" default:"4" validate:"gte=1"`
	// MinCompleteness is the completeness ratio a table needs to be valid.
	MinCompleteness float64 `mapstructure:"min_completeness" default:"0.5" validate:"gte=0,lte=1"`
}

// Table is the aligned, validated output.
type Table struct {
	Rows    []models.FeatureRow
	Summary models.ValidationSummary
}

// Aligner joins per-date tables onto the trading calendar of the indicator table.
type Aligner struct {
	opts Options
	log  zerolog.Logger
}

// New creates an Aligner, applying defaults to unset options.
func New(opts Options, log zerolog.Logger) *Aligner {
	_ = defaults.Set(&opts)
	return &Aligner{
		opts: opts,
		log:  log.With().Str("component", "align").Logger(),
	}
}

// Align produces one FeatureRow per indicator date inside window. Market
// context may include dates before the window; they seed carry-forward.
func (a *Aligner) Align(
	indicators []models.IndicatorRow,
	market []models.MarketContext,
	news []models.DailyNewsAggregate,
	window utils.Window,
) (Table, error) {
	rows := a.join(indicators, market, news, window)
	if len(rows) == 0 {
		return Table{}, models.FatalInput("no price data in requested window %s", window)
	}

	summary := a.validate(rows)
	a.log.Info().
		Str("window", window.String()).
		Int("rows", summary.TotalRows).
		Float64("completeness", summary.CompletenessRatio).
		Bool("valid", summary.IsValid).
		Msg("feature table aligned")
	return Table{Rows: rows, Summary: summary}, nil
}

func (a *Aligner) join(
	indicators []models.IndicatorRow,
	market []models.MarketContext,
	news []models.DailyNewsAggregate,
	window utils.Window,
) []models.FeatureRow {
	ind := make([]models.IndicatorRow, 0, len(indicators))
	seen := make(map[string]bool, len(indicators))
	for _, r := range indicators {
		key := utils.DateKey(r.Date)
		if !window.Contains(r.Date) || seen[key] {
			continue
		}
		seen[key] = true
		ind = append(ind, r)
	}
	sort.SliceStable(ind, func(i, j int) bool { return ind[i].Date.Before(ind[j].Date) })

	newsByDate := make(map[string]models.DailyNewsAggregate, len(news))
	for _, n := range news {
		newsByDate[utils.DateKey(n.Date)] = n
	}

	ctx := append([]models.MarketContext(nil), market...)
	sort.SliceStable(ctx, func(i, j int) bool { return ctx[i].Date.Before(ctx[j].Date) })
	carry := newCarry()
	next := 0

	rows := make([]models.FeatureRow, 0, len(ind))
	for _, r := range ind {
		date := utils.DateOf(r.Date)
		for next < len(ctx) && !utils.DateOf(ctx[next].Date).After(date) {
			carry.observe(ctx[next])
			next++
		}

		row := models.FeatureRow{Date: date, Indicators: r}
		row.Indicators.Date = date
		row.Market, row.Flags.Stale = carry.at(date)

		if n, ok := newsByDate[utils.DateKey(date)]; ok {
			row.News = n
		} else {
			row.News = models.NeutralNews(date)
		}
		rows = append(rows, row)
	}
	return rows
}

// validate flags missing and outlier cells and computes the summary.
func (a *Aligner) validate(rows []models.FeatureRow) models.ValidationSummary {
	summary := models.ValidationSummary{
		TotalRows:          len(rows),
		TotalColumns:       len(models.FeatureColumns) + 1, // + date
		MissingValueCounts: make(map[string]int, len(models.FeatureColumns)),
		OutlierCounts:      make(map[string]int, len(a.opts.OutlierColumns)),
		StaleCounts:        make(map[string]int, len(models.MarketColumns)),
	}
	for _, col := range models.FeatureColumns {
		summary.MissingValueCounts[col] = 0
	}
	for _, col := range models.MarketColumns {
		summary.StaleCounts[col] = 0
	}

	present := 0
	pricesOK := true
	for i := range rows {
		for _, c := range rows[i].Columns() {
			if c.Value == nil {
				summary.MissingValueCounts[c.Name]++
				rows[i].Flags.Missing = append(rows[i].Flags.Missing, c.Name)
				continue
			}
			present++
		}
		for _, col := range models.PriceColumns {
			if rows[i].Value(col) == nil {
				pricesOK = false
			}
		}
		for _, col := range rows[i].Flags.Stale {
			summary.StaleCounts[col]++
		}
	}

	for _, col := range a.opts.OutlierColumns {
		summary.OutlierCounts[col] = a.flagOutliers(rows, col)
	}

	total := len(rows) * len(models.FeatureColumns)
	if total > 0 {
		summary.CompletenessRatio = float64(present) / float64(total)
	}
	summary.IsValid = len(rows) > 0 && pricesOK && summary.CompletenessRatio >= a.opts.MinCompleteness
	return summary
}

func (a *Aligner) flagOutliers(rows []models.FeatureRow, col string) int {
	values := make([]float64, 0, len(rows))
	for _, r := range rows {
		if v := r.Value(col); v != nil {
			values = append(values, *v)
		}
	}
	lo, hi, ok := Fences(values, a.opts.OutlierK, a.opts.MinOutlierValues)
	if !ok {
		return 0
	}

	count := 0
	for i := range rows {
		v := rows[i].Value(col)
		if v == nil || (*v >= lo && *v <= hi) {
			continue
		}
		rows[i].Flags.Outliers = append(rows[i].Flags.Outliers, col)
		count++
	}
	if count > 0 {
		a.log.Debug().Str("column", col).Int("count", count).
			Float64("lower", lo).Float64("upper", hi).Msg("outliers flagged")
	}
	return count
}
