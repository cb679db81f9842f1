package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/seenimoa/fincurator/internal/export"
	"github.com/seenimoa/fincurator/pkg/models"
)

// ── Load / Defaults ──

func TestLoadReturnsDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Indicator defaults
	if cfg.Indicators.RSIPeriod != 14 {
		t.Errorf("Indicators.RSIPeriod: got %d, want 14", cfg.Indicators.RSIPeriod)
	}
	if cfg.Indicators.MACDSlow != 26 {
		t.Errorf("Indicators.MACDSlow: got %d, want 26", cfg.Indicators.MACDSlow)
	}
	if cfg.Indicators.BollingerMult != 2 {
		t.Errorf("Indicators.BollingerMult: got %f, want 2", cfg.Indicators.BollingerMult)
	}

	// News defaults
	if cfg.News.TopHeadlines != 5 {
		t.Errorf("News.TopHeadlines: got %d, want 5", cfg.News.TopHeadlines)
	}
	if cfg.News.PerSourceTimeout != 10*time.Second {
		t.Errorf("News.PerSourceTimeout: got %s, want 10s", cfg.News.PerSourceTimeout)
	}
	if cfg.News.Deadline != 30*time.Second {
		t.Errorf("News.Deadline: got %s, want 30s", cfg.News.Deadline)
	}
	if !cfg.News.PageEnabled {
		t.Error("News.PageEnabled should be true by default")
	}

	// Validation defaults
	if cfg.Validation.OutlierK != 1.5 {
		t.Errorf("Validation.OutlierK: got %f, want 1.5", cfg.Validation.OutlierK)
	}
	if len(cfg.Validation.OutlierColumns) != 5 {
		t.Errorf("Validation.OutlierColumns: got %v", cfg.Validation.OutlierColumns)
	}
	if cfg.Validation.MinCompleteness != 0.5 {
		t.Errorf("Validation.MinCompleteness: got %f, want 0.5", cfg.Validation.MinCompleteness)
	}

	// Market defaults
	if cfg.Market.VIXSymbol != "^VIX" {
		t.Errorf("Market.VIXSymbol: got %q", cfg.Market.VIXSymbol)
	}
	if cfg.Market.TreasuryScale != 1 {
		t.Errorf("Market.TreasuryScale: got %f, want 1", cfg.Market.TreasuryScale)
	}
	if cfg.Market.WarmupDays != 60 {
		t.Errorf("Market.WarmupDays: got %d, want 60", cfg.Market.WarmupDays)
	}

	// Output defaults
	if cfg.Output.Format != export.FormatBoth {
		t.Errorf("Output.Format: got %q, want %q", cfg.Output.Format, export.FormatBoth)
	}
	if cfg.Output.Precision != 4 {
		t.Errorf("Output.Precision: got %d, want 4", cfg.Output.Precision)
	}

	// HTTP and logging defaults
	if cfg.HTTP.Timeout != 30*time.Second {
		t.Errorf("HTTP.Timeout: got %s", cfg.HTTP.Timeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestDefaultMatchesLoad(t *testing.T) {
	cfg := Default()
	if cfg.Validation.MinOutlierValues != 4 {
		t.Errorf("Validation.MinOutlierValues: got %d, want 4", cfg.Validation.MinOutlierValues)
	}
	if cfg.Validation.OutlierColumns[0] != models.ColDailyReturn {
		t.Errorf("first outlier column: got %q", cfg.Validation.OutlierColumns[0])
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
indicators:
  rsi_period: 21
news:
  top_headlines: 3
  per_source_timeout: 5s
  page_enabled: false
  feeds:
    - name: reuters
      url: https://example.com/rss
market:
  treasury_scale: 0.1
output:
  format: all
  precision: 2
logging:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}

	if cfg.Indicators.RSIPeriod != 21 {
		t.Errorf("Indicators.RSIPeriod: got %d, want 21", cfg.Indicators.RSIPeriod)
	}
	// untouched keys keep their defaults
	if cfg.Indicators.MACDFast != 12 {
		t.Errorf("Indicators.MACDFast: got %d, want 12", cfg.Indicators.MACDFast)
	}
	if cfg.News.TopHeadlines != 3 {
		t.Errorf("News.TopHeadlines: got %d, want 3", cfg.News.TopHeadlines)
	}
	if cfg.News.PerSourceTimeout != 5*time.Second {
		t.Errorf("News.PerSourceTimeout: got %s, want 5s", cfg.News.PerSourceTimeout)
	}
	if cfg.News.PageEnabled {
		t.Error("News.PageEnabled: want false")
	}
	if len(cfg.News.Feeds) != 1 || cfg.News.Feeds[0].Name != "reuters" {
		t.Errorf("News.Feeds: got %+v", cfg.News.Feeds)
	}
	if cfg.Market.TreasuryScale != 0.1 {
		t.Errorf("Market.TreasuryScale: got %f, want 0.1", cfg.Market.TreasuryScale)
	}
	if cfg.Output.Format != export.FormatAll {
		t.Errorf("Output.Format: got %q", cfg.Output.Format)
	}
	if cfg.Output.Precision != 2 {
		t.Errorf("Output.Precision: got %d, want 2", cfg.Output.Precision)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format: got %q", cfg.Logging.Format)
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected error for nonexistent file")
	}
}

func TestLoadFromFileInvalidFeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
news:
  feeds:
    - name: broken
      url: not a url
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("expected validation error for malformed feed url")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("FINCURATOR_OUTPUT_FORMAT", "csv")
	t.Setenv("FINCURATOR_INDICATORS_RSI_PERIOD", "9")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Output.Format != export.FormatCSV {
		t.Errorf("Output.Format: got %q, want csv", cfg.Output.Format)
	}
	if cfg.Indicators.RSIPeriod != 9 {
		t.Errorf("Indicators.RSIPeriod: got %d, want 9", cfg.Indicators.RSIPeriod)
	}
}

func TestEnvOverrideRejectsUnknownFormat(t *testing.T) {
	t.Setenv("FINCURATOR_OUTPUT_FORMAT", "xlsx")
	if _, err := Load(); err == nil {
		t.Fatal("expected validation error for unknown output format")
	}
}

func TestHomeDirReturnsNonEmpty(t *testing.T) {
	if homeDir() == "" {
		t.Error("homeDir() returned empty string")
	}
}
