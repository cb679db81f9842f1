package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/fincurator/pkg/models"
	"github.com/seenimoa/fincurator/pkg/utils"
)

// DefaultYahooChartURL is the Yahoo Finance v8 chart endpoint.
const DefaultYahooChartURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// YahooChart fetches daily bars from the Yahoo Finance chart API.
// It keeps no cache; every call goes to the network.
type YahooChart struct {
	client  *Client
	baseURL string
	log     zerolog.Logger
}

// NewYahooChart creates a chart client. An empty baseURL uses DefaultYahooChartURL.
func NewYahooChart(client *Client, baseURL string, log zerolog.Logger) *YahooChart {
	if baseURL == "" {
		baseURL = DefaultYahooChartURL
	}
	return &YahooChart{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log.With().Str("component", "yahoo_chart").Logger(),
	}
}

// --- Yahoo Finance v8 API types ---

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol    string `json:"symbol"`
	Currency  string `json:"currency"`
	GMTOffset int64  `json:"gmtoffset"`
	Timezone  string `json:"exchangeTimezoneName"`
}

type yfIndicators struct {
	Quote []yfOHLCV `json:"quote"`
}

type yfOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// --- Public methods ---

// Quotes returns daily quotes for the Yahoo symbol over [from, to], ascending
// by date. Bars with a missing price field are skipped.
func (y *YahooChart) Quotes(ctx context.Context, symbol string, from, to time.Time) ([]models.Quote, error) {
	result, err := y.chart(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}
	quotes := parseYFQuotes(result)
	if len(quotes) == 0 {
		return nil, fmt.Errorf("yfinance chart %s: %w", symbol, ErrNoData)
	}
	y.log.Debug().Str("symbol", symbol).Int("bars", len(quotes)).Msg("quotes fetched")
	return quotes, nil
}

// Closes returns the daily closing series for the Yahoo symbol over [from, to].
func (y *YahooChart) Closes(ctx context.Context, symbol string, from, to time.Time) ([]Point, error) {
	quotes, err := y.Quotes(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}
	points := make([]Point, len(quotes))
	for i, q := range quotes {
		points[i] = Point{Date: q.Date, Value: q.Close}
	}
	return points, nil
}

func (y *YahooChart) chart(ctx context.Context, symbol string, from, to time.Time) (yfChartResult, error) {
	// period2 is exclusive; include the whole of the last day.
	endpoint := fmt.Sprintf(
		"%s/%s?period1=%d&period2=%d&interval=1d&events=history",
		y.baseURL, url.PathEscape(symbol),
		utils.DateOf(from).Unix(), utils.DateOf(to).AddDate(0, 0, 1).Unix(),
	)

	body, err := y.client.Get(ctx, endpoint, map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		return yfChartResult{}, fmt.Errorf("yfinance chart %s: %w", symbol, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return yfChartResult{}, fmt.Errorf("read response: %w", err)
	}

	var resp yfChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return yfChartResult{}, fmt.Errorf("parse yfinance chart: %w", err)
	}

	if resp.Chart.Error != nil {
		if strings.EqualFold(resp.Chart.Error.Code, "Not Found") {
			return yfChartResult{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
		}
		return yfChartResult{}, fmt.Errorf("yfinance chart error: %s", resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return yfChartResult{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}
	return resp.Chart.Result[0], nil
}

// --- Helpers ---

// parseYFQuotes converts a chart result into quotes. Timestamps are shifted
// by the exchange GMT offset so each bar lands on its local trading date.
// A later bar for the same date replaces an earlier one.
func parseYFQuotes(result yfChartResult) []models.Quote {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}

	q := result.Indicators.Quote[0]
	byDate := make(map[string]models.Quote, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		open, okO := valueAt(q.Open, i)
		high, okH := valueAt(q.High, i)
		low, okL := valueAt(q.Low, i)
		closePx, okC := valueAt(q.Close, i)
		if !okO || !okH || !okL || !okC {
			continue
		}
		c := models.Quote{
			Date:  utils.DateOf(time.Unix(ts+result.Meta.GMTOffset, 0)),
			Open:  open,
			High:  high,
			Low:   low,
			Close: closePx,
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			c.Volume = *q.Volume[i]
		}
		byDate[utils.DateKey(c.Date)] = c
	}

	quotes := make([]models.Quote, 0, len(byDate))
	for _, c := range byDate {
		quotes = append(quotes, c)
	}
	sort.Slice(quotes, func(i, j int) bool { return quotes[i].Date.Before(quotes[j].Date) })
	return quotes
}

func valueAt(values []*float64, i int) (float64, bool) {
	if i >= len(values) || values[i] == nil {
		return 0, false
	}
	return *values[i], true
}
