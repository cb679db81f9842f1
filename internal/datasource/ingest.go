package datasource

import (
	"context"
	"fmt"
	"time"

	"github.com/creasty/defaults"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/fincurator/pkg/models"
)

// IngestOptions bounds news ingestion.
type IngestOptions struct {
	// PerSourceTimeout bounds each source's fetch.
	PerSourceTimeout time.Duration `mapstructure:"per_source_timeout" default:"10s"`
	// Deadline bounds the whole ingestion step.
	Deadline time.Duration `mapstructure:"deadline" default:"30s"`
}

// SourceReport records the outcome of one source fetch.
type SourceReport struct {
	ID       string
	Articles int
	Err      error
	Elapsed  time.Duration
}

// Status converts the report into its exportable form.
func (r SourceReport) Status() models.SourceStatus {
	s := models.SourceStatus{ID: r.ID, Articles: r.Articles}
	if r.Err != nil {
		s.Error = r.Err.Error()
	}
	return s
}

type slot struct {
	articles []models.Article
	report   SourceReport
}

// Ingest fetches every source concurrently. Each source gets its own timeout
// inside a global deadline and writes only to its own slot. A failing or
// stalled source is reported and excluded; ingestion itself never fails.
// Articles are returned in source order.
func Ingest(ctx context.Context, sources []ArticleSource, opts IngestOptions, log zerolog.Logger) ([]models.Article, []SourceReport) {
	_ = defaults.Set(&opts)
	log = log.With().Str("component", "ingest").Logger()

	ctx, cancel := context.WithTimeout(ctx, opts.Deadline)
	defer cancel()

	slots := make([]slot, len(sources))
	g, gctx := errgroup.WithContext(ctx)

	for i, src := range sources {
		g.Go(func() error {
			slots[i] = fetchOne(gctx, src, opts.PerSourceTimeout)
			return nil // non-fatal
		})
	}
	_ = g.Wait()

	var articles []models.Article
	reports := make([]SourceReport, len(slots))
	for i, s := range slots {
		reports[i] = s.report
		if s.report.Err != nil {
			log.Warn().Err(s.report.Err).Str("source", s.report.ID).
				Dur("elapsed", s.report.Elapsed).Msg("news source unavailable")
			continue
		}
		log.Debug().Str("source", s.report.ID).Int("articles", s.report.Articles).
			Dur("elapsed", s.report.Elapsed).Msg("news source fetched")
		articles = append(articles, s.articles...)
	}

	log.Info().Int("sources", len(sources)).Int("articles", len(articles)).Msg("news ingested")
	return articles, reports
}

// fetchOne runs a single fetch, abandoning it when its timeout expires even
// if the source ignores cancellation.
func fetchOne(ctx context.Context, src ArticleSource, timeout time.Duration) slot {
	sctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		articles []models.Article
		err      error
	}
	done := make(chan result, 1)
	start := time.Now()
	go func() {
		a, err := src.Fetch(sctx)
		done <- result{articles: a, err: err}
	}()

	report := SourceReport{ID: src.ID()}
	select {
	case r := <-done:
		report.Elapsed = time.Since(start)
		if r.err != nil {
			report.Err = r.err
			return slot{report: report}
		}
		report.Articles = len(r.articles)
		return slot{articles: r.articles, report: report}
	case <-sctx.Done():
		report.Elapsed = time.Since(start)
		report.Err = fmt.Errorf("source %s: %w", src.ID(), sctx.Err())
		return slot{report: report}
	}
}
