package news

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/fincurator/pkg/models"
)

var aapl = models.TargetMetadata{Symbol: "AAPL", CompanyName: "Apple", Aliases: []string{"iPhone"}}

func newTestScorer() *Scorer {
	return NewScorer(Options{}, zerolog.Nop())
}

func at(day, hour int) time.Time {
	return time.Date(2025, 3, day, hour, 0, 0, 0, time.UTC)
}

func TestScoreDuplicateKeepsEarliest(t *testing.T) {
	articles := []models.Article{
		{SourceID: "yahoo", PublishedAt: at(10, 15), Title: "AAPL jumps after results", URL: "https://news.example.com/aapl-jumps"},
		{SourceID: "rss", PublishedAt: at(10, 14), Title: "AAPL jumps after results", URL: "https://news.example.com/aapl-jumps"},
	}

	res := newTestScorer().Score(articles, aapl)

	require.Len(t, res.Articles, 1)
	got := res.Articles[0]
	assert.Equal(t, 0.9, got.Relevance)
	assert.Equal(t, at(10, 14), got.PublishedAt)
	assert.Equal(t, "rss", got.SourceID)
	assert.Equal(t, 1, res.Stats.Duplicates)
	assert.Equal(t, 1, res.Stats.Scored)
}

func TestScoreCanonicalURLDedup(t *testing.T) {
	articles := []models.Article{
		{SourceID: "a", PublishedAt: at(10, 9), Title: "Apple earnings beat", URL: "https://News.Example.com/story/?utm_source=rss#top"},
		{SourceID: "b", PublishedAt: at(10, 8), Title: "Apple earnings beat", URL: "https://news.example.com/story"},
	}
	res := newTestScorer().Score(articles, aapl)
	require.Len(t, res.Articles, 1)
	assert.Equal(t, "b", res.Articles[0].SourceID)
}

func TestScoreOrderIndependent(t *testing.T) {
	articles := []models.Article{
		{SourceID: "a", PublishedAt: at(10, 9), Title: "AAPL rally continues", URL: "https://x.com/1"},
		{SourceID: "b", PublishedAt: at(10, 9), Title: "AAPL rally continues!", URL: "https://x.com/1"},
		{SourceID: "c", PublishedAt: at(11, 9), Title: "Apple faces lawsuit", URL: "https://x.com/2"},
		{SourceID: "d", PublishedAt: at(11, 10), Title: "Stock market drops", URL: "https://x.com/3"},
		{SourceID: "e", PublishedAt: at(12, 1), Title: "Weather is nice", URL: "https://x.com/4"},
	}
	reversed := make([]models.Article, len(articles))
	for i := range articles {
		reversed[len(articles)-1-i] = articles[i]
	}

	s := newTestScorer()
	assert.Equal(t, s.Score(articles, aapl), s.Score(reversed, aapl))
}

func TestScoreTieBreakBySource(t *testing.T) {
	articles := []models.Article{
		{SourceID: "zeta", PublishedAt: at(10, 9), Title: "AAPL news", URL: "https://x.com/1"},
		{SourceID: "alpha", PublishedAt: at(10, 9), Title: "AAPL news", URL: "https://x.com/1"},
	}
	res := newTestScorer().Score(articles, aapl)
	require.Len(t, res.Articles, 1)
	assert.Equal(t, "alpha", res.Articles[0].SourceID)
}

func TestScoreDropsUnusable(t *testing.T) {
	articles := []models.Article{
		{SourceID: "a", PublishedAt: at(10, 9), Title: "AAPL up", URL: ""},
		{SourceID: "a", Title: "AAPL up", URL: "https://x.com/1"},
		{SourceID: "a", PublishedAt: at(10, 9), Title: "<p> </p>", URL: "https://x.com/2"},
		{SourceID: "a", PublishedAt: at(10, 9), Title: "<b>AAPL</b> &amp; peers", URL: "https://x.com/3"},
	}
	res := newTestScorer().Score(articles, aapl)
	assert.Equal(t, 4, res.Stats.Received)
	assert.Equal(t, 3, res.Stats.Dropped)
	require.Len(t, res.Articles, 1)
	assert.Equal(t, "AAPL & peers", res.Articles[0].Title)
}

func TestScoreIrrelevantExcluded(t *testing.T) {
	articles := []models.Article{
		{SourceID: "a", PublishedAt: at(10, 9), Title: "Local bakery opens", URL: "https://x.com/1"},
	}
	res := newTestScorer().Score(articles, aapl)
	assert.Empty(t, res.Articles)
	assert.Empty(t, res.Daily)
	assert.Equal(t, 1, res.Stats.Irrelevant)
}

func TestScoreEmptyInput(t *testing.T) {
	res := newTestScorer().Score(nil, aapl)
	assert.Empty(t, res.Articles)
	assert.Empty(t, res.Daily)
	assert.Zero(t, res.Stats.Received)
}

func TestScoreDateIsUTC(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	// 21:30 in New York is already the next day in UTC.
	published := time.Date(2025, 9, 17, 21, 30, 0, 0, ny)
	res := newTestScorer().Score([]models.Article{
		{SourceID: "a", PublishedAt: published, Title: "AAPL late news", URL: "https://x.com/1"},
	}, aapl)
	require.Len(t, res.Articles, 1)
	assert.Equal(t, time.Date(2025, 9, 18, 0, 0, 0, 0, time.UTC), res.Articles[0].Date)
}

func TestAggregateDaily(t *testing.T) {
	articles := []models.Article{
		{SourceID: "a", PublishedAt: at(10, 9), Title: "Markets steady", URL: "https://x.com/1"},
		{SourceID: "a", PublishedAt: at(10, 11), Title: "AAPL surges", URL: "https://x.com/2"},
		{SourceID: "a", PublishedAt: at(10, 12), Title: "Apple product event", URL: "https://x.com/3"},
		{SourceID: "a", PublishedAt: at(12, 8), Title: "AAPL downgrade", URL: "https://x.com/4"},
	}
	s := NewScorer(Options{TopHeadlines: 2}, zerolog.Nop())
	res := s.Score(articles, aapl)

	require.Len(t, res.Daily, 2)
	day := res.Daily[0]
	assert.Equal(t, at(10, 0), day.Date)
	assert.Equal(t, 3, day.Count)
	assert.InDelta(t, (0.6+0.9+0.8)/3, day.MeanRelevance, 1e-12)
	assert.Equal(t, []string{"AAPL surges", "Apple product event"}, day.Headlines)
	assert.Greater(t, day.MeanSentiment, 0.5)

	next := res.Daily[1]
	assert.Equal(t, at(12, 0), next.Date)
	assert.Less(t, next.MeanSentiment, 0.5)
}

func TestAggregateHeadlineRecencyTieBreak(t *testing.T) {
	articles := []models.Article{
		{SourceID: "a", PublishedAt: at(10, 9), Title: "AAPL early", URL: "https://x.com/1"},
		{SourceID: "a", PublishedAt: at(10, 18), Title: "AAPL late", URL: "https://x.com/2"},
	}
	res := newTestScorer().Score(articles, aapl)
	require.Len(t, res.Daily, 1)
	assert.Equal(t, []string{"AAPL late", "AAPL early"}, res.Daily[0].Headlines)
}

func TestNeutralNewsFill(t *testing.T) {
	day := models.NeutralNews(at(13, 0))
	assert.Equal(t, 0, day.Count)
	assert.Equal(t, 0.5, day.MeanSentiment)
	assert.Zero(t, day.MeanRelevance)
}
