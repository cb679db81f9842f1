// Package export writes a Dataset to CSV, JSON and SQLite.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/seenimoa/fincurator/pkg/models"
)

// Output formats.
const (
	FormatCSV    = "csv"
	FormatJSON   = "json"
	FormatSQLite = "sqlite"
	FormatBoth   = "both" // csv + json
	FormatAll    = "all"  // csv + json + sqlite
)

// Formats lists every accepted format name.
var Formats = []string{FormatCSV, FormatJSON, FormatSQLite, FormatBoth, FormatAll}

// Options configures export.
type Options struct {
	Dir       string `mapstructure:"dir"       default:"./output"`
	Format    string `mapstructure:"format"    default:"both" validate:"oneof=csv json sqlite both all"`
	Precision int32  `mapstructure:"precision" default:"4"    validate:"gte=0,lte=12"`
	// SQLitePath defaults to fincurator.db inside Dir.
	SQLitePath string `mapstructure:"sqlite_path"`
}

// Writer exports datasets according to Options.
type Writer struct {
	opts Options
	log  zerolog.Logger
}

// New creates a Writer, applying defaults to unset options.
func New(opts Options, log zerolog.Logger) (*Writer, error) {
	if err := defaults.Set(&opts); err != nil {
		return nil, err
	}
	if err := models.Validate(opts); err != nil {
		return nil, fmt.Errorf("export options: %w", err)
	}
	if opts.SQLitePath == "" {
		opts.SQLitePath = filepath.Join(opts.Dir, "fincurator.db")
	}
	return &Writer{opts: opts, log: log.With().Str("component", "export").Logger()}, nil
}

// Write exports ds in every configured format and returns the paths written.
func (w *Writer) Write(ctx context.Context, ds *models.Dataset) ([]string, error) {
	if err := os.MkdirAll(w.opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	base := filepath.Join(w.opts.Dir, BaseName(ds.Metadata.Symbol, ds.Metadata.CollectionDate))

	var paths []string
	if w.wants(FormatCSV) {
		path := base + ".csv"
		if err := writeFile(path, func(f *os.File) error { return WriteCSV(f, ds, w.opts.Precision) }); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	if w.wants(FormatJSON) {
		path := base + ".json"
		if err := writeFile(path, func(f *os.File) error { return WriteJSON(f, ds, w.opts.Precision) }); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	if w.wants(FormatSQLite) {
		if err := WriteSQLite(ctx, w.opts.SQLitePath, ds, w.opts.Precision); err != nil {
			return paths, err
		}
		paths = append(paths, w.opts.SQLitePath)
	}

	for _, p := range paths {
		w.log.Info().Str("path", p).Int("rows", len(ds.Rows)).Msg("dataset exported")
	}
	return paths, nil
}

func (w *Writer) wants(format string) bool {
	switch w.opts.Format {
	case format:
		return true
	case FormatBoth:
		return format == FormatCSV || format == FormatJSON
	case FormatAll:
		return true
	}
	return false
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// BaseName returns <SYMBOL>_<YYYYMMDD_HHMMSS> for a run.
func BaseName(symbol string, collected time.Time) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '^', ' ':
			return '_'
		}
		return r
	}, strings.ToUpper(symbol))
	return clean + "_" + collected.UTC().Format("20060102_150405")
}

// round rounds v to precision decimal places; nil stays nil.
func round(v *float64, precision int32) *float64 {
	if v == nil {
		return nil
	}
	r, _ := decimal.NewFromFloat(*v).Round(precision).Float64()
	return &r
}

// formatValue renders v with at most precision decimals; nil is empty.
func formatValue(v *float64, precision int32) string {
	if v == nil {
		return ""
	}
	return decimal.NewFromFloat(*v).Round(precision).String()
}
