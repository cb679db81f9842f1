package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/fincurator/internal/datasource"
	"github.com/seenimoa/fincurator/internal/metrics"
	"github.com/seenimoa/fincurator/pkg/models"
	"github.com/seenimoa/fincurator/pkg/utils"
)

var today = time.Date(2024, 6, 14, 21, 0, 0, 0, time.UTC) // a Friday

type fakeQuotes struct {
	quotes []models.Quote
	err    error

	symbol   string
	from, to time.Time
}

func (f *fakeQuotes) Quotes(_ context.Context, symbol string, from, to time.Time) ([]models.Quote, error) {
	f.symbol, f.from, f.to = symbol, from, to
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Quote
	for _, q := range f.quotes {
		if !q.Date.Before(utils.DateOf(from)) && !q.Date.After(to) {
			out = append(out, q)
		}
	}
	return out, nil
}

type fakeMarket struct{}

func (fakeMarket) Context(_ context.Context, stock []models.Quote, _, _ time.Time) []models.MarketContext {
	out := make([]models.MarketContext, 0, len(stock))
	for _, q := range stock {
		out = append(out, models.MarketContext{Date: q.Date, VIX: models.Float(15)})
	}
	return out
}

type fakeSource struct {
	id       string
	articles []models.Article
	err      error
}

func (f fakeSource) ID() string { return f.id }

func (f fakeSource) Fetch(context.Context) ([]models.Article, error) {
	return f.articles, f.err
}

// weekdayQuotes returns one quote per weekday over the n calendar days ending at end.
func weekdayQuotes(end time.Time, n int) []models.Quote {
	var out []models.Quote
	price := 180.0
	for d := utils.DateOf(end).AddDate(0, 0, -n+1); !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		price += 0.5
		out = append(out, models.Quote{
			Date: d, Open: price - 0.2, High: price + 1, Low: price - 1, Close: price, Volume: 1_000_000,
		})
	}
	return out
}

func newTestPipeline(q QuoteSource, sources SourceFactory) *Pipeline {
	p := New(q, fakeMarket{}, sources, Options{WarmupDays: 60}, metrics.New(), zerolog.Nop())
	p.now = func() time.Time { return today }
	return p
}

func TestRunDaysWindow(t *testing.T) {
	quotes := &fakeQuotes{quotes: weekdayQuotes(today, 200)}
	sources := func(symbol string, exchange models.Exchange) []datasource.ArticleSource {
		assert.Equal(t, "AAPL", symbol)
		return []datasource.ArticleSource{
			fakeSource{id: "rss", articles: []models.Article{
				{SourceID: "rss", PublishedAt: today.Add(-2 * time.Hour), Title: "AAPL shares surge after record iPhone sales", URL: "https://example.com/a"},
				{SourceID: "rss", PublishedAt: today.Add(-3 * time.Hour), Title: "Recipe of the week: lemon cake", URL: "https://example.com/b"},
			}},
			fakeSource{id: "broken", err: errors.New("boom")},
		}
	}

	p := newTestPipeline(quotes, sources)
	ds, err := p.Run(context.Background(), Request{Symbol: "aapl", Exchange: models.ExchangeNASDAQ, Days: 5})
	require.NoError(t, err)

	assert.Equal(t, "AAPL", quotes.symbol)
	assert.Equal(t, utils.DateOf(today), quotes.to)
	assert.True(t, quotes.from.Before(today.AddDate(0, 0, -60)), "fetch range includes warm-up")

	require.Len(t, ds.Rows, 5)
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), ds.Rows[0].Date)
	assert.Equal(t, utils.DateOf(today), ds.Rows[4].Date)
	assert.Equal(t, ds.Rows[0].Date, ds.Metadata.WindowStart)
	assert.Equal(t, 5, ds.Metadata.DaysRequested)
	assert.Equal(t, 5, ds.Metadata.DaysCollected)
	assert.NotEqual(t, uuid.Nil, ds.Metadata.RunID)

	// warm-up history defines long-lookback indicators inside the window
	assert.NotNil(t, ds.Rows[0].Indicators.SMA20)
	assert.NotNil(t, ds.Rows[0].Indicators.MACDSignal)

	last := ds.Rows[4]
	assert.Equal(t, 1, last.News.Count)
	assert.InDelta(t, 0.9, last.News.MeanRelevance, 1e-9)
	assert.Equal(t, models.NeutralSentiment, ds.Rows[0].News.MeanSentiment)

	assert.Equal(t, 2, ds.Metadata.News.Received)
	assert.Equal(t, 1, ds.Metadata.News.Irrelevant)
	require.Len(t, ds.Metadata.Sources, 2)
	assert.Equal(t, "boom", ds.Metadata.Sources[1].Error)
	assert.True(t, ds.Summary.IsValid)

	rec := p.Metrics()
	assert.Equal(t, 1, mustGatherAndCount(t, rec, "fincurator_source_errors_total"))
}

func TestRunFromToWindow(t *testing.T) {
	quotes := &fakeQuotes{quotes: weekdayQuotes(today, 200)}
	p := newTestPipeline(quotes, nil)

	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC)
	ds, err := p.Run(context.Background(), Request{Symbol: "HBL", Exchange: models.ExchangePSX, From: from, To: to})
	require.NoError(t, err)

	assert.Equal(t, "HBL.KHI", quotes.symbol)
	assert.Equal(t, from.AddDate(0, 0, -60), quotes.from)
	// June 1-2 are a weekend
	require.Len(t, ds.Rows, 5)
	assert.Equal(t, 7, ds.Metadata.DaysRequested)
	assert.Empty(t, ds.Metadata.Sources)
}

func TestRunQuoteFailureIsFatal(t *testing.T) {
	p := newTestPipeline(&fakeQuotes{err: datasource.ErrSymbolNotFound}, nil)
	_, err := p.Run(context.Background(), Request{Symbol: "ZZZZ", Exchange: models.ExchangeNYSE})
	require.Error(t, err)
	assert.ErrorIs(t, err, datasource.ErrSymbolNotFound)
}

func TestRunNoQuotesIsFatalInput(t *testing.T) {
	p := newTestPipeline(&fakeQuotes{}, nil)
	_, err := p.Run(context.Background(), Request{Symbol: "AAPL", Exchange: models.ExchangeNASDAQ})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrFatalInput)
	assert.True(t, IsFatal(err))
}

func TestRunWindowWithoutPricesIsFatalInput(t *testing.T) {
	quotes := &fakeQuotes{quotes: weekdayQuotes(today.AddDate(0, 0, -30), 100)}
	p := newTestPipeline(quotes, nil)

	from := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	_, err := p.Run(context.Background(), Request{Symbol: "AAPL", Exchange: models.ExchangeNASDAQ, From: from})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrFatalInput)
}

func TestRequestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr bool
		check   func(t *testing.T, r Request)
	}{
		{
			name: "defaults days and to",
			req:  Request{Symbol: " $msft ", Exchange: models.ExchangeNASDAQ},
			check: func(t *testing.T, r Request) {
				assert.Equal(t, "MSFT", r.Symbol)
				assert.Equal(t, DefaultDays, r.Days)
				assert.Equal(t, utils.DateOf(today), r.To)
			},
		},
		{name: "missing symbol", req: Request{Exchange: models.ExchangeNYSE}, wantErr: true},
		{name: "unknown exchange", req: Request{Symbol: "AAPL", Exchange: "LSE"}, wantErr: true},
		{name: "malformed symbol", req: Request{Symbol: "AA PL", Exchange: models.ExchangeNYSE}, wantErr: true},
		{name: "negative days", req: Request{Symbol: "AAPL", Exchange: models.ExchangeNYSE, Days: -1}, wantErr: true},
		{
			name:    "from after to",
			req:     Request{Symbol: "AAPL", Exchange: models.ExchangeNYSE, From: today, To: today.AddDate(0, 0, -3)},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			err := req.Normalize(today)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidRequest)
				return
			}
			require.NoError(t, err)
			tt.check(t, req)
		})
	}
}

func TestRequestTarget(t *testing.T) {
	r := Request{Symbol: "AAPL", Company: "Apple Incorporated"}
	meta := r.target("AAPL")
	assert.Equal(t, "Apple Incorporated", meta.CompanyName)
	assert.Contains(t, meta.Aliases, "Apple")
	assert.Contains(t, meta.Aliases, "iPhone")
	assert.NotEmpty(t, meta.SectorKeywords)
}

func mustGatherAndCount(t *testing.T, rec *metrics.Recorder, name string) int {
	t.Helper()
	n, err := testutil.GatherAndCount(rec.Registry(), name)
	require.NoError(t, err)
	return n
}
