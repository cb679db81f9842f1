package align

import (
	"time"

	"github.com/seenimoa/fincurator/pkg/models"
	"github.com/seenimoa/fincurator/pkg/utils"
)

type known struct {
	value float64
	date  time.Time
}

// carry tracks the last known value of each market field.
type carry struct {
	last map[string]known
}

func newCarry() *carry {
	return &carry{last: make(map[string]known, len(models.MarketColumns))}
}

func (c *carry) observe(m models.MarketContext) {
	date := utils.DateOf(m.Date)
	for col, v := range marketFields(m) {
		if v != nil {
			c.last[col] = known{value: *v, date: date}
		}
	}
}

// at returns the context for date. Fields observed on an earlier date are
// carried forward and reported as stale; fields never observed are nil.
func (c *carry) at(date time.Time) (models.MarketContext, []string) {
	out := models.MarketContext{Date: date}
	var stale []string
	for _, col := range models.MarketColumns {
		k, ok := c.last[col]
		if !ok {
			continue
		}
		v := k.value
		switch col {
		case models.ColVIX:
			out.VIX = &v
		case models.ColDXY:
			out.DXY = &v
		case models.ColTreasury10Y:
			out.Treasury10Y = &v
		case models.ColSP500Correlation:
			out.SP500Correlation = &v
		}
		if k.date.Before(date) {
			stale = append(stale, col)
		}
	}
	return out, stale
}

func marketFields(m models.MarketContext) map[string]*float64 {
	return map[string]*float64{
		models.ColVIX:              m.VIX,
		models.ColDXY:              m.DXY,
		models.ColTreasury10Y:      m.Treasury10Y,
		models.ColSP500Correlation: m.SP500Correlation,
	}
}
