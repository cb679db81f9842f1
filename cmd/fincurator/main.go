// fincurator collects a date-aligned feature table of technical indicators,
// market context and scored news for one symbol.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/seenimoa/fincurator/internal/config"
	"github.com/seenimoa/fincurator/internal/logger"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger
var (
	cfg       *config.Config
	log       zerolog.Logger
	logCloser io.Closer
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fincurator",
	Short: "Feature tables from prices, market context and news",
	Long: `fincurator turns daily quotes and financial news into one date-aligned
feature table: technical indicators, market context (VIX, DXY, 10Y yield,
S&P 500 correlation) and per-day news relevance and sentiment, with a
data-quality summary. Output is CSV, JSON or SQLite.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		log, logCloser, err = logger.New(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// config is not needed to print the version
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "fincurator %s\n", version)
		fmt.Fprintf(out, "  commit:  %s\n", commit)
		fmt.Fprintf(out, "  built:   %s\n", date)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		printStatus(cmd.OutOrStdout(), cfg)
		return nil
	},
}

func printStatus(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "═══════════════════════════════════════")
	fmt.Fprintln(w, "  fincurator — Configuration")
	fmt.Fprintln(w, "═══════════════════════════════════════")
	fmt.Fprintf(w, "  Version:        %s (%s)\n", version, commit)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  Indicators:")
	p := cfg.Indicators
	fmt.Fprintf(w, "    RSI:           %d\n", p.RSIPeriod)
	fmt.Fprintf(w, "    MACD:          %d/%d/%d\n", p.MACDFast, p.MACDSlow, p.MACDSignal)
	fmt.Fprintf(w, "    Stochastic:    %d/%d\n", p.StochKPeriod, p.StochDPeriod)
	fmt.Fprintf(w, "    Bollinger:     %d x %.1f\n", p.BollingerPeriod, p.BollingerMult)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  News:")
	fmt.Fprintf(w, "    Timeouts:      %s per source, %s total\n", cfg.News.PerSourceTimeout, cfg.News.Deadline)
	fmt.Fprintf(w, "    Page scraping: %t\n", cfg.News.PageEnabled)
	fmt.Fprintf(w, "    Extra feeds:   %d\n", len(cfg.News.Feeds))
	for _, f := range cfg.News.Feeds {
		fmt.Fprintf(w, "      - %s (%s)\n", f.Name, f.URL)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  Market:")
	fmt.Fprintf(w, "    Series:        %s, %s, %s, %s\n",
		cfg.Market.VIXSymbol, cfg.Market.DXYSymbol, cfg.Market.TreasurySymbol, cfg.Market.SP500Symbol)
	fmt.Fprintf(w, "    Warm-up:       %d days\n", cfg.Market.WarmupDays)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  Output:")
	fmt.Fprintf(w, "    Format:        %s\n", cfg.Output.Format)
	fmt.Fprintf(w, "    Directory:     %s\n", cfg.Output.Dir)
	fmt.Fprintf(w, "    Precision:     %d\n", cfg.Output.Precision)
	fmt.Fprintf(w, "    Min complete:  %.2f\n", cfg.Validation.MinCompleteness)
	fmt.Fprintln(w, "═══════════════════════════════════════")
}
