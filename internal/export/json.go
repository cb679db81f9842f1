package export

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/seenimoa/fincurator/pkg/models"
	"github.com/seenimoa/fincurator/pkg/utils"
)

type document struct {
	Metadata models.Metadata          `json:"metadata"`
	Summary  models.ValidationSummary `json:"summary"`
	Data     []jsonRow                `json:"data"`
}

// jsonRow marshals a FeatureRow as a flat object in column order.
type jsonRow struct {
	row       models.FeatureRow
	precision int32
}

func (r jsonRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	write := func(key string, v any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	}

	if err := write("date", utils.DateKey(r.row.Date)); err != nil {
		return nil, err
	}
	for _, c := range r.row.Columns() {
		if err := write(c.Name, round(c.Value, r.precision)); err != nil {
			return nil, err
		}
	}
	headlines := r.row.News.Headlines
	if headlines == nil {
		headlines = []string{}
	}
	if err := write(colHeadlines, headlines); err != nil {
		return nil, err
	}
	if err := write("flags", r.row.Flags); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// WriteJSON writes {metadata, summary, data} with two-space indentation.
// Nulls are JSON null.
func WriteJSON(w io.Writer, ds *models.Dataset, precision int32) error {
	doc := document{
		Metadata: ds.Metadata,
		Summary:  ds.Summary,
		Data:     make([]jsonRow, len(ds.Rows)),
	}
	if ratio := round(&doc.Summary.CompletenessRatio, precision); ratio != nil {
		doc.Summary.CompletenessRatio = *ratio
	}
	for i, row := range ds.Rows {
		doc.Data[i] = jsonRow{row: row, precision: precision}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
