// Package config handles configuration loading for fincurator.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/creasty/defaults"
	"github.com/spf13/viper"

	"github.com/seenimoa/fincurator/internal/align"
	"github.com/seenimoa/fincurator/internal/analysis/news"
	"github.com/seenimoa/fincurator/internal/analysis/technical"
	"github.com/seenimoa/fincurator/internal/datasource"
	"github.com/seenimoa/fincurator/internal/export"
	"github.com/seenimoa/fincurator/internal/logger"
	"github.com/seenimoa/fincurator/pkg/models"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "FINCURATOR"

// Config represents the complete application configuration.
type Config struct {
	Indicators technical.Params       `mapstructure:"indicators"`
	News       NewsConfig             `mapstructure:"news"`
	Validation align.Options          `mapstructure:"validation"`
	Market     MarketConfig           `mapstructure:"market"`
	Output     export.Options         `mapstructure:"output"`
	HTTP       datasource.HTTPOptions `mapstructure:"http"`
	Logging    logger.Config          `mapstructure:"logging"`
}

// NewsConfig holds scoring and ingestion settings.
type NewsConfig struct {
	news.Options             `mapstructure:",squash"`
	datasource.IngestOptions `mapstructure:",squash"`

	// Feeds are fetched in addition to the built-in ones.
	Feeds             []datasource.Feed `mapstructure:"feeds"               validate:"dive"`
	MaxItems          int               `mapstructure:"max_items"           default:"50"`
	MinHeadlineLength int               `mapstructure:"min_headline_length" default:"15"`
	PageEnabled       bool              `mapstructure:"page_enabled"`
}

// MarketConfig holds market context settings.
type MarketConfig struct {
	datasource.MarketOptions `mapstructure:",squash"`

	ChartURL   string `mapstructure:"chart_url"   default:"https://query1.finance.yahoo.com/v8/finance/chart"`
	WarmupDays int    `mapstructure:"warmup_days" default:"60" validate:"gte=0"`
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.fincurator/config.yaml (home directory)
//  3. /etc/fincurator/config.yaml (system)
//
// Environment variables override config file values.
// Format: FINCURATOR_<SECTION>_<KEY>, e.g., FINCURATOR_OUTPUT_FORMAT
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".fincurator"))
	v.AddConfigPath("/etc/fincurator")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

// Default returns the configuration with only defaults applied.
func Default() *Config {
	cfg, err := decode(newViper())
	if err != nil {
		// defaults are static and always decode
		panic(err)
	}
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("error applying defaults: %w", err)
	}
	if err := models.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %s", err)
	}
	return &cfg, nil
}

// setDefaults registers every key so env overrides are picked up on Unmarshal.
func setDefaults(v *viper.Viper) {
	// Indicators
	v.SetDefault("indicators.volatility_window", 10)
	v.SetDefault("indicators.rsi_period", 14)
	v.SetDefault("indicators.macd_fast", 12)
	v.SetDefault("indicators.macd_slow", 26)
	v.SetDefault("indicators.macd_signal", 9)
	v.SetDefault("indicators.stoch_k_period", 14)
	v.SetDefault("indicators.stoch_d_period", 3)
	v.SetDefault("indicators.williams_period", 14)
	v.SetDefault("indicators.bollinger_period", 20)
	v.SetDefault("indicators.bollinger_std", 2.0)

	// News
	v.SetDefault("news.top_headlines", 5)
	v.SetDefault("news.per_source_timeout", "10s")
	v.SetDefault("news.deadline", "30s")
	v.SetDefault("news.max_items", 50)
	v.SetDefault("news.min_headline_length", 15)
	v.SetDefault("news.page_enabled", true)

	// Validation
	v.SetDefault("validation.outlier_k", 1.5)
	v.SetDefault("validation.outlier_columns", []string{
		models.ColDailyReturn, models.ColVolume, models.ColVolatility, models.ColRSI, models.ColNewsCount,
	})
	v.SetDefault("validation.min_outlier_values", 4)
	v.SetDefault("validation.min_completeness", 0.5)

	// Market
	v.SetDefault("market.vix_symbol", "^VIX")
	v.SetDefault("market.dxy_symbol", "DX-Y.NYB")
	v.SetDefault("market.treasury_symbol", "^TNX")
	v.SetDefault("market.sp500_symbol", "^GSPC")
	v.SetDefault("market.treasury_scale", 1.0)
	v.SetDefault("market.correlation_window", 20)
	v.SetDefault("market.chart_url", datasource.DefaultYahooChartURL)
	v.SetDefault("market.warmup_days", 60)

	// Output
	v.SetDefault("output.dir", "./output")
	v.SetDefault("output.format", export.FormatBoth)
	v.SetDefault("output.precision", 4)
	v.SetDefault("output.sqlite_path", "")

	// HTTP
	v.SetDefault("http.timeout", "30s")
	v.SetDefault("http.user_agent", datasource.DefaultUserAgent)
	v.SetDefault("http.rate_per_second", 5)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
