package export

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/seenimoa/fincurator/pkg/models"
	"github.com/seenimoa/fincurator/pkg/utils"
)

// Trailing text columns after the numeric features.
const (
	colHeadlines = "news_headlines"
	colMissing   = "missing"
	colOutliers  = "outliers"
	colStale     = "stale"
)

// Header returns the CSV header row.
func Header() []string {
	h := make([]string, 0, len(models.FeatureColumns)+5)
	h = append(h, "date")
	h = append(h, models.FeatureColumns...)
	return append(h, colHeadlines, colMissing, colOutliers, colStale)
}

// WriteCSV writes one line per row. Nulls are empty cells.
func WriteCSV(w io.Writer, ds *models.Dataset, precision int32) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return err
	}
	for _, row := range ds.Rows {
		record := make([]string, 0, len(models.FeatureColumns)+5)
		record = append(record, utils.DateKey(row.Date))
		for _, c := range row.Columns() {
			record = append(record, formatValue(c.Value, precision))
		}
		record = append(record,
			strings.Join(row.News.Headlines, " | "),
			strings.Join(row.Flags.Missing, ";"),
			strings.Join(row.Flags.Outliers, ";"),
			strings.Join(row.Flags.Stale, ";"),
		)
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
