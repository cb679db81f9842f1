// Package pipeline runs one collection: quotes, indicators, market context,
// news ingestion and scoring, alignment, and the resulting Dataset.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/seenimoa/fincurator/internal/align"
	"github.com/seenimoa/fincurator/internal/analysis/news"
	"github.com/seenimoa/fincurator/internal/analysis/technical"
	"github.com/seenimoa/fincurator/internal/datasource"
	"github.com/seenimoa/fincurator/internal/metrics"
	"github.com/seenimoa/fincurator/pkg/models"
	"github.com/seenimoa/fincurator/pkg/utils"
)

// QuoteSource provides daily bars for a Yahoo symbol.
type QuoteSource interface {
	Quotes(ctx context.Context, symbol string, from, to time.Time) ([]models.Quote, error)
}

// ContextSource provides the market context snapshot. It never fails; a
// missing series is simply absent.
type ContextSource interface {
	Context(ctx context.Context, stock []models.Quote, from, to time.Time) []models.MarketContext
}

// SourceFactory builds the news sources for a Yahoo symbol.
type SourceFactory func(yahooSymbol string, exchange models.Exchange) []datasource.ArticleSource

// Options configures the stages of a run.
type Options struct {
	Indicators technical.Params
	News       news.Options
	Ingest     datasource.IngestOptions
	Validation align.Options
	// WarmupDays of history are fetched before the window so indicators
	// with long lookbacks are defined inside it.
	WarmupDays int
}

// Pipeline wires collaborators to the core stages.
type Pipeline struct {
	quotes  QuoteSource
	market  ContextSource
	sources SourceFactory
	opts    Options
	metrics *metrics.Recorder
	log     zerolog.Logger
	now     func() time.Time
}

// New creates a Pipeline. rec may be nil.
func New(quotes QuoteSource, market ContextSource, sources SourceFactory, opts Options, rec *metrics.Recorder, log zerolog.Logger) *Pipeline {
	if rec == nil {
		rec = metrics.New()
	}
	return &Pipeline{
		quotes:  quotes,
		market:  market,
		sources: sources,
		opts:    opts,
		metrics: rec,
		log:     log.With().Str("component", "pipeline").Logger(),
		now:     time.Now,
	}
}

// Metrics returns the recorder of the pipeline.
func (p *Pipeline) Metrics() *metrics.Recorder { return p.metrics }

// Run executes one collection. It fails only on an invalid request, a quote
// fetch failure, or fatal input; every other problem degrades the result.
func (p *Pipeline) Run(ctx context.Context, req Request) (*models.Dataset, error) {
	if err := req.Normalize(p.now()); err != nil {
		return nil, err
	}
	runID := uuid.New()
	yahoo := utils.ToYahooSymbol(req.Symbol, req.Exchange)
	start, end := req.fetchRange(p.opts.WarmupDays)

	log := p.log.With().
		Str("run_id", runID.String()).
		Str("symbol", yahoo).
		Logger()
	log.Info().
		Str("exchange", string(req.Exchange)).
		Str("fetch", utils.NewWindow(start, end).String()).
		Msg("collection started")

	stop := p.metrics.Time("quotes")
	quotes, err := p.quotes.Quotes(ctx, yahoo, start, end)
	stop()
	if err != nil {
		return nil, fmt.Errorf("fetch quotes for %s: %w", yahoo, err)
	}

	stop = p.metrics.Time("indicators")
	indicators, err := technical.Compute(quotes, p.opts.Indicators)
	stop()
	if err != nil {
		return nil, err
	}

	window, err := req.window(indicators)
	if err != nil {
		return nil, err
	}

	stop = p.metrics.Time("market")
	market := p.market.Context(ctx, quotes, start, end)
	stop()

	stop = p.metrics.Time("ingest")
	var sources []datasource.ArticleSource
	if p.sources != nil {
		sources = p.sources(yahoo, req.Exchange)
	}
	articles, reports := datasource.Ingest(ctx, sources, p.opts.Ingest, log)
	stop()
	statuses := make([]models.SourceStatus, 0, len(reports))
	for _, r := range reports {
		if r.Err != nil {
			p.metrics.RecordSourceError(r.ID)
		}
		statuses = append(statuses, r.Status())
	}

	stop = p.metrics.Time("score")
	scored := news.NewScorer(p.opts.News, log).Score(articles, req.target(yahoo))
	stop()
	p.metrics.RecordNews(yahoo, scored.Stats)

	stop = p.metrics.Time("align")
	table, err := align.New(p.opts.Validation, log).Align(indicators, market, scored.Daily, window)
	stop()
	if err != nil {
		return nil, err
	}
	p.metrics.RecordSummary(yahoo, table.Summary)

	ds := &models.Dataset{
		Metadata: models.Metadata{
			RunID:          runID,
			Symbol:         yahoo,
			Exchange:       req.Exchange,
			WindowStart:    window.Start,
			WindowEnd:      window.End,
			DaysRequested:  req.requestedDays(),
			DaysCollected:  len(table.Rows),
			CollectionDate: p.now().UTC(),
			Sources:        statuses,
			News:           scored.Stats,
		},
		Summary: table.Summary,
		Rows:    table.Rows,
	}

	log.Info().
		Int("rows", len(ds.Rows)).
		Float64("completeness", ds.Summary.CompletenessRatio).
		Bool("valid", ds.Summary.IsValid).
		Msg("collection finished")
	return ds, nil
}

// IsFatal reports whether err should abort the run without output.
func IsFatal(err error) bool {
	return err != nil && (errors.Is(err, models.ErrFatalInput) || errors.Is(err, ErrInvalidRequest))
}
