package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/seenimoa/fincurator/internal/analysis/relevance"
	"github.com/seenimoa/fincurator/pkg/models"
	"github.com/seenimoa/fincurator/pkg/utils"
)

// ErrInvalidRequest is returned for requests that fail validation.
var ErrInvalidRequest = errors.New("invalid request")

// DefaultDays is the window length when neither Days nor From is given.
const DefaultDays = 7

// Request describes one collection. Either Days or From (with an optional To)
// selects the window.
type Request struct {
	Symbol   string          `validate:"required"`
	Exchange models.Exchange `validate:"required,oneof=NYSE NASDAQ PSX CRYPTO"`
	// Days is the number of trading dates to collect, ending at To.
	Days int `validate:"gte=0,lte=3650"`
	From time.Time
	To   time.Time
	// Company overrides the known company name used for relevance.
	Company string
}

// Normalize validates the request and fills defaults relative to now.
func (r *Request) Normalize(now time.Time) error {
	r.Symbol = utils.NormalizeSymbol(r.Symbol)
	if err := models.Validate(r); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}
	if !utils.ValidSymbol(r.Symbol) {
		return fmt.Errorf("%w: malformed symbol %q", ErrInvalidRequest, r.Symbol)
	}

	if r.To.IsZero() {
		r.To = now
	}
	r.To = utils.DateOf(r.To)
	if !r.From.IsZero() {
		r.From = utils.DateOf(r.From)
		if r.From.After(r.To) {
			return fmt.Errorf("%w: from %s is after to %s", ErrInvalidRequest,
				utils.DateKey(r.From), utils.DateKey(r.To))
		}
		return nil
	}
	if r.Days == 0 {
		r.Days = DefaultDays
	}
	return nil
}

// fetchRange returns the quote range: the window plus warm-up history. In
// Days mode the window start is unknown until quotes arrive, so the range is
// widened to cover weekends and holidays.
func (r Request) fetchRange(warmupDays int) (time.Time, time.Time) {
	start := r.From
	if start.IsZero() {
		span := r.Days*7/5 + 7
		start = r.To.AddDate(0, 0, -span)
	}
	return start.AddDate(0, 0, -warmupDays), r.To
}

// window resolves the collection window. In Days mode it spans the last
// Days trading dates on or before To.
func (r Request) window(indicators []models.IndicatorRow) (utils.Window, error) {
	if !r.From.IsZero() {
		return utils.NewWindow(r.From, r.To), nil
	}

	var dates []time.Time
	for _, row := range indicators {
		if !row.Date.After(r.To) {
			dates = append(dates, row.Date)
		}
	}
	if len(dates) == 0 {
		return utils.Window{}, models.FatalInput("no trading dates on or before %s", utils.DateKey(r.To))
	}
	first := len(dates) - r.Days
	if first < 0 {
		first = 0
	}
	return utils.NewWindow(dates[first], r.To), nil
}

func (r Request) requestedDays() int {
	if !r.From.IsZero() {
		return int(r.To.Sub(r.From).Hours()/24) + 1
	}
	return r.Days
}

// target builds the relevance metadata for the request.
func (r Request) target(yahooSymbol string) models.TargetMetadata {
	company, aliases := utils.CompanyFor(r.Symbol)
	if r.Company != "" {
		if company != "" && company != r.Company {
			aliases = append(aliases, company)
		}
		company = r.Company
	}
	return models.TargetMetadata{
		Symbol:          yahooSymbol,
		CompanyName:     company,
		Aliases:         aliases,
		SectorKeywords:  relevance.DefaultSectorKeywords,
		GenericKeywords: relevance.DefaultGenericKeywords,
	}
}
