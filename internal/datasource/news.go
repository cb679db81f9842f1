package datasource

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/fincurator/pkg/models"
)

// Feed is a configured RSS/Atom feed.
type Feed struct {
	Name string `mapstructure:"name" validate:"required"`
	URL  string `mapstructure:"url"  validate:"required,url"`
}

// YahooHeadlineFeed is the Yahoo Finance per-symbol headline feed.
const YahooHeadlineFeed = "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US"

// CoinDeskFeed is the CoinDesk outbound feed, used for crypto symbols.
const CoinDeskFeed = "https://www.coindesk.com/arc/outboundfeeds/rss/"

// YahooNewsPage is the Yahoo Finance quote news page.
const YahooNewsPage = "https://finance.yahoo.com/quote/%s/news"

// DefaultFeeds returns the built-in feeds for a Yahoo symbol on exchange.
func DefaultFeeds(yahooSymbol string, exchange models.Exchange) []Feed {
	feeds := []Feed{{
		Name: "yahoo_rss",
		URL:  fmt.Sprintf(YahooHeadlineFeed, url.QueryEscape(yahooSymbol)),
	}}
	if exchange == models.ExchangeCrypto {
		feeds = append(feeds, Feed{Name: "coindesk", URL: CoinDeskFeed})
	}
	return feeds
}

// --- RSS ---

// RSSSource reads articles from one RSS/Atom feed.
type RSSSource struct {
	feed     Feed
	client   *Client
	parser   *gofeed.Parser
	maxItems int
}

// NewRSSSource creates an RSS source. maxItems <= 0 keeps every entry.
func NewRSSSource(feed Feed, client *Client, maxItems int) *RSSSource {
	return &RSSSource{
		feed:     feed,
		client:   client,
		parser:   gofeed.NewParser(),
		maxItems: maxItems,
	}
}

// ID returns the feed name.
func (r *RSSSource) ID() string { return r.feed.Name }

// Fetch downloads and parses the feed.
func (r *RSSSource) Fetch(ctx context.Context) ([]models.Article, error) {
	body, err := r.client.Get(ctx, r.feed.URL, map[string]string{
		"Accept": "application/rss+xml, application/atom+xml, application/xml, text/xml",
	})
	if err != nil {
		return nil, fmt.Errorf("fetch RSS %s: %w", r.feed.Name, err)
	}
	defer body.Close()

	feed, err := r.parser.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %s: %w", r.feed.Name, err)
	}

	items := feed.Items
	if r.maxItems > 0 && len(items) > r.maxItems {
		items = items[:r.maxItems]
	}

	articles := make([]models.Article, 0, len(items))
	for _, item := range items {
		a := models.Article{
			SourceID: r.feed.Name,
			Title:    item.Title,
			Summary:  item.Description,
			URL:      item.Link,
		}
		switch {
		case item.PublishedParsed != nil:
			a.PublishedAt = *item.PublishedParsed
		case item.UpdatedParsed != nil:
			a.PublishedAt = *item.UpdatedParsed
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// --- Yahoo quote news page ---

// headlineSelectors are tried in order; every match contributes.
var headlineSelectors = []string{
	`h3[data-test-locator="headline"]`,
	`h3[class*="headline"]`,
	`a[class*="story-title"]`,
	`li[class*="stream-item"] h3`,
	`div[class*="story"] h3`,
	`div[data-module="stream"] h3`,
}

// YahooPageSource scrapes headline links from a Yahoo Finance news page.
// The page carries no timestamps, so articles are stamped with fetch time.
type YahooPageSource struct {
	pageURL   string
	client    *Client
	minLength int
	maxItems  int
	now       func() time.Time
}

// NewYahooPageSource creates a page source for the Yahoo symbol.
func NewYahooPageSource(yahooSymbol string, client *Client, minLength, maxItems int) *YahooPageSource {
	return &YahooPageSource{
		pageURL:   fmt.Sprintf(YahooNewsPage, url.PathEscape(yahooSymbol)),
		client:    client,
		minLength: minLength,
		maxItems:  maxItems,
		now:       time.Now,
	}
}

// ID returns the source identifier.
func (y *YahooPageSource) ID() string { return "yahoo_page" }

// Fetch downloads the page and extracts headline links.
func (y *YahooPageSource) Fetch(ctx context.Context) ([]models.Article, error) {
	body, err := y.client.Get(ctx, y.pageURL, map[string]string{
		"Accept": "text/html",
	})
	if err != nil {
		return nil, fmt.Errorf("fetch news page: %w", err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse news page: %w", err)
	}

	base, _ := url.Parse(y.pageURL)
	fetched := y.now()
	seen := make(map[string]bool)
	var articles []models.Article

	for _, sel := range headlineSelectors {
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if y.maxItems > 0 && len(articles) >= y.maxItems {
				return false
			}
			title := strings.Join(strings.Fields(s.Text()), " ")
			if len(title) < y.minLength {
				return true
			}
			href := linkOf(s)
			if href == "" {
				return true
			}
			link := resolve(base, href)
			if seen[link] {
				return true
			}
			seen[link] = true
			articles = append(articles, models.Article{
				SourceID:    y.ID(),
				PublishedAt: fetched,
				Title:       title,
				URL:         link,
			})
			return true
		})
	}
	return articles, nil
}

// linkOf finds the href for a headline element: itself, an enclosing
// anchor or a nested one.
func linkOf(s *goquery.Selection) string {
	if href, ok := s.Attr("href"); ok {
		return href
	}
	if href, ok := s.Closest("a").Attr("href"); ok {
		return href
	}
	if href, ok := s.Find("a").First().Attr("href"); ok {
		return href
	}
	return ""
}

func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil || base == nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
