package models

import "time"

// NeutralSentiment is the sentiment used for days without qualifying news.
const NeutralSentiment = 0.5

// Article is one ingested news item as delivered by a source.
type Article struct {
	SourceID    string    `json:"source_id"`
	PublishedAt time.Time `json:"published_at"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary,omitempty"`
	URL         string    `json:"url"`
}

// ScoredArticle is an Article that passed relevance filtering and carries both scores.
type ScoredArticle struct {
	Article
	Relevance float64   `json:"relevance"` // one of the relevance tiers, max 0.9
	Sentiment float64   `json:"sentiment"` // 0 (bearish) .. 1 (bullish)
	Date      time.Time `json:"date"`      // UTC calendar date of PublishedAt
}

// DailyNewsAggregate summarises the scored news for a single calendar date.
type DailyNewsAggregate struct {
	Date          time.Time `json:"date"`
	Count         int       `json:"count"`
	MeanRelevance float64   `json:"mean_relevance"`
	MeanSentiment float64   `json:"mean_sentiment"`
	Headlines     []string  `json:"headlines"`
}

// NeutralNews returns the fill value for a date with no qualifying articles.
func NeutralNews(date time.Time) DailyNewsAggregate {
	return DailyNewsAggregate{
		Date:          date,
		MeanSentiment: NeutralSentiment,
	}
}

// TargetMetadata describes the asset news is scored against.
type TargetMetadata struct {
	Symbol          string   `json:"symbol"           validate:"required"`
	CompanyName     string   `json:"company_name"`
	Aliases         []string `json:"aliases,omitempty"`
	SectorKeywords  []string `json:"sector_keywords"  validate:"dive,required"`
	GenericKeywords []string `json:"generic_keywords" validate:"dive,required"`
}
