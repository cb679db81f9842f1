// Package news turns a raw, multi-source article set into relevance- and
// sentiment-scored articles and one aggregate per calendar date.
package news

import (
	"sort"

	"github.com/creasty/defaults"
	"github.com/rs/zerolog"

	"github.com/seenimoa/fincurator/internal/analysis/relevance"
	"github.com/seenimoa/fincurator/internal/analysis/sentiment"
	"github.com/seenimoa/fincurator/pkg/models"
	"github.com/seenimoa/fincurator/pkg/utils"
)

// Options configures the scorer.
type Options struct {
	// TopHeadlines is how many headlines each daily aggregate keeps.
	TopHeadlines int `mapstructure:"top_headlines" default:"5" validate:"gte=0"`
}

// Result is the output of one scoring pass.
type Result struct {
	Articles []models.ScoredArticle
	Daily    []models.DailyNewsAggregate
	Stats    models.NewsStats
}

// Scorer scores and aggregates articles. It is stateless between calls.
type Scorer struct {
	opts Options
	log  zerolog.Logger
}

// NewScorer creates a Scorer, applying defaults to unset options.
func NewScorer(opts Options, log zerolog.Logger) *Scorer {
	_ = defaults.Set(&opts)
	return &Scorer{
		opts: opts,
		log:  log.With().Str("component", "news").Logger(),
	}
}

type candidate struct {
	models.Article
	canonical string
}

// Score cleans, deduplicates, scores and aggregates articles for the target.
// The result does not depend on the order of the input.
func (s *Scorer) Score(articles []models.Article, meta models.TargetMetadata) Result {
	res := Result{Stats: models.NewsStats{Received: len(articles)}}
	if len(articles) == 0 {
		return res
	}

	unique := s.dedup(s.clean(articles, &res.Stats), &res.Stats)

	table := relevance.NewTable(meta)
	for _, c := range unique {
		text := c.Title
		if c.Summary != "" {
			text += " " + c.Summary
		}
		rel, _, ok := table.Score(text)
		if !ok {
			res.Stats.Irrelevant++
			continue
		}
		res.Articles = append(res.Articles, models.ScoredArticle{
			Article:   c.Article,
			Relevance: rel,
			Sentiment: sentiment.Score(text),
			Date:      utils.DateOf(c.PublishedAt),
		})
	}
	res.Stats.Scored = len(res.Articles)
	res.Daily = s.aggregate(res.Articles)

	s.log.Info().
		Str("symbol", meta.Symbol).
		Int("received", res.Stats.Received).
		Int("dropped", res.Stats.Dropped).
		Int("duplicates", res.Stats.Duplicates).
		Int("irrelevant", res.Stats.Irrelevant).
		Int("scored", res.Stats.Scored).
		Int("days", len(res.Daily)).
		Msg("news scored")
	return res
}

// clean normalizes text fields and drops articles that cannot be used.
func (s *Scorer) clean(articles []models.Article, stats *models.NewsStats) []candidate {
	out := make([]candidate, 0, len(articles))
	for _, a := range articles {
		a.Title = CleanText(a.Title)
		a.Summary = CleanText(a.Summary)
		if a.PublishedAt.IsZero() || (a.Title == "" && a.Summary == "") {
			stats.Dropped++
			continue
		}
		canonical, err := CanonicalURL(a.URL)
		if err != nil {
			s.log.Debug().Str("source", a.SourceID).Str("url", a.URL).Msg("dropping article without usable url")
			stats.Dropped++
			continue
		}
		out = append(out, candidate{Article: a, canonical: canonical})
	}
	return out
}

// dedup keeps one article per canonical URL: the earliest published, with
// exact ties broken by source id then title.
func (s *Scorer) dedup(cands []candidate, stats *models.NewsStats) []candidate {
	best := make(map[string]candidate, len(cands))
	for _, c := range cands {
		cur, seen := best[c.canonical]
		if !seen {
			best[c.canonical] = c
			continue
		}
		stats.Duplicates++
		if preferred(c, cur) {
			best[c.canonical] = c
		}
	}

	out := make([]candidate, 0, len(best))
	for _, key := range sortedKeys(best) {
		out = append(out, best[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.Before(out[j].PublishedAt)
	})
	return out
}

func preferred(a, b candidate) bool {
	if !a.PublishedAt.Equal(b.PublishedAt) {
		return a.PublishedAt.Before(b.PublishedAt)
	}
	if a.SourceID != b.SourceID {
		return a.SourceID < b.SourceID
	}
	if a.Title != b.Title {
		return a.Title < b.Title
	}
	return a.Summary < b.Summary
}

// aggregate builds one DailyNewsAggregate per date present, ascending.
func (s *Scorer) aggregate(scored []models.ScoredArticle) []models.DailyNewsAggregate {
	byDate := make(map[string][]models.ScoredArticle)
	for _, a := range scored {
		key := utils.DateKey(a.Date)
		byDate[key] = append(byDate[key], a)
	}

	daily := make([]models.DailyNewsAggregate, 0, len(byDate))
	for _, key := range sortedKeys(byDate) {
		group := byDate[key]
		sort.SliceStable(group, func(i, j int) bool {
			return headlineBefore(group[i], group[j])
		})

		agg := models.DailyNewsAggregate{Date: group[0].Date, Count: len(group)}
		var relSum, sentSum float64
		for _, a := range group {
			relSum += a.Relevance
			sentSum += a.Sentiment
		}
		agg.MeanRelevance = relSum / float64(len(group))
		agg.MeanSentiment = sentSum / float64(len(group))

		k := min(s.opts.TopHeadlines, len(group))
		agg.Headlines = make([]string, 0, k)
		for _, a := range group[:k] {
			agg.Headlines = append(agg.Headlines, a.Title)
		}
		daily = append(daily, agg)
	}
	return daily
}

// headlineBefore orders by relevance desc, then recency desc, then title.
func headlineBefore(a, b models.ScoredArticle) bool {
	if a.Relevance != b.Relevance {
		return a.Relevance > b.Relevance
	}
	if !a.PublishedAt.Equal(b.PublishedAt) {
		return a.PublishedAt.After(b.PublishedAt)
	}
	if a.Title != b.Title {
		return a.Title < b.Title
	}
	return a.URL < b.URL
}
