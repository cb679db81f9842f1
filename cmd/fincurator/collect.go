package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/seenimoa/fincurator/internal/config"
	"github.com/seenimoa/fincurator/internal/datasource"
	"github.com/seenimoa/fincurator/internal/export"
	"github.com/seenimoa/fincurator/internal/metrics"
	"github.com/seenimoa/fincurator/internal/pipeline"
	"github.com/seenimoa/fincurator/pkg/models"
	"github.com/seenimoa/fincurator/pkg/utils"
)

// --- Collect Command ---

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect the feature table for a symbol",
	Long: `Fetch quotes, market context and news for a symbol, align them into one
row per trading date, and export the table with its quality summary.`,
	Example: `  fincurator collect --exchange NASDAQ --symbol AAPL --days 7
  fincurator collect --exchange CRYPTO --symbol BTC --from 2024-05-01 --to 2024-05-31 --output-format all`,
	RunE: runCollect,
}

func init() {
	f := collectCmd.Flags()
	f.String("exchange", "", "exchange: "+exchangeList())
	f.String("symbol", "", "ticker symbol, e.g. AAPL, HBL, BTC")
	f.Int("days", pipeline.DefaultDays, "number of trading days to collect")
	f.String("from", "", "window start date (YYYY-MM-DD); overrides --days")
	f.String("to", "", "window end date (YYYY-MM-DD, default today)")
	f.String("company", "", "company name used for news relevance")
	f.String("output-format", "", "output format: "+strings.Join(export.Formats, "|"))
	f.String("output-dir", "", "output directory")
	f.String("metrics-file", "", "write run metrics in Prometheus text format to this path")
	_ = collectCmd.MarkFlagRequired("exchange")
	_ = collectCmd.MarkFlagRequired("symbol")
}

func runCollect(cmd *cobra.Command, args []string) error {
	req, err := requestFromFlags(cmd)
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("output-format"); v != "" {
		cfg.Output.Format = strings.ToLower(v)
	}
	if v, _ := cmd.Flags().GetString("output-dir"); v != "" {
		cfg.Output.Dir = v
	}

	writer, err := export.New(cfg.Output, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec := metrics.New()
	p := buildPipeline(cfg, rec)
	ds, err := p.Run(ctx, req)
	if err != nil {
		return err
	}

	paths, err := writer.Write(ctx, ds)
	if err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("metrics-file"); path != "" {
		if err := rec.WriteTextfile(path); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	printSummary(cmd.OutOrStdout(), ds, paths)
	return nil
}

func requestFromFlags(cmd *cobra.Command) (pipeline.Request, error) {
	flags := cmd.Flags()
	exchangeName, _ := flags.GetString("exchange")
	exchange, err := utils.ParseExchange(exchangeName)
	if err != nil {
		return pipeline.Request{}, err
	}

	req := pipeline.Request{Exchange: exchange}
	req.Symbol, _ = flags.GetString("symbol")
	req.Days, _ = flags.GetInt("days")
	req.Company, _ = flags.GetString("company")

	if v, _ := flags.GetString("from"); v != "" {
		if req.From, err = utils.ParseDate(v); err != nil {
			return pipeline.Request{}, err
		}
	}
	if v, _ := flags.GetString("to"); v != "" {
		if req.To, err = utils.ParseDate(v); err != nil {
			return pipeline.Request{}, err
		}
	}
	return req, nil
}

// buildPipeline wires the Yahoo collaborators from config.
func buildPipeline(cfg *config.Config, rec *metrics.Recorder) *pipeline.Pipeline {
	client := datasource.NewClient(cfg.HTTP)
	chart := datasource.NewYahooChart(client, cfg.Market.ChartURL, log)
	market := datasource.NewMarketContextFetcher(chart, cfg.Market.MarketOptions, log)

	sources := func(yahooSymbol string, exchange models.Exchange) []datasource.ArticleSource {
		feeds := append(datasource.DefaultFeeds(yahooSymbol, exchange), cfg.News.Feeds...)
		out := make([]datasource.ArticleSource, 0, len(feeds)+1)
		for _, feed := range feeds {
			out = append(out, datasource.NewRSSSource(feed, client, cfg.News.MaxItems))
		}
		if cfg.News.PageEnabled {
			out = append(out, datasource.NewYahooPageSource(yahooSymbol, client, cfg.News.MinHeadlineLength, cfg.News.MaxItems))
		}
		return out
	}

	return pipeline.New(chart, market, sources, pipeline.Options{
		Indicators: cfg.Indicators,
		News:       cfg.News.Options,
		Ingest:     cfg.News.IngestOptions,
		Validation: cfg.Validation,
		WarmupDays: cfg.Market.WarmupDays,
	}, rec, log)
}

func printSummary(w io.Writer, ds *models.Dataset, paths []string) {
	m, s := ds.Metadata, ds.Summary
	fmt.Fprintf(w, "%s (%s) %s..%s\n", m.Symbol, m.Exchange,
		utils.DateKey(m.WindowStart), utils.DateKey(m.WindowEnd))
	fmt.Fprintf(w, "  rows:         %d of %d requested\n", m.DaysCollected, m.DaysRequested)
	fmt.Fprintf(w, "  completeness: %.1f%%\n", s.CompletenessRatio*100)
	fmt.Fprintf(w, "  valid:        %t\n", s.IsValid)
	fmt.Fprintf(w, "  news:         %d scored of %d received (%d duplicates, %d irrelevant)\n",
		m.News.Scored, m.News.Received, m.News.Duplicates, m.News.Irrelevant)
	for _, src := range m.Sources {
		if src.Error != "" {
			fmt.Fprintf(w, "  source %-12s failed: %s\n", src.ID, src.Error)
			continue
		}
		fmt.Fprintf(w, "  source %-12s %d articles\n", src.ID, src.Articles)
	}
	for _, p := range paths {
		fmt.Fprintf(w, "  wrote %s\n", p)
	}
}

func exchangeList() string {
	names := make([]string, len(models.Exchanges))
	for i, e := range models.Exchanges {
		names[i] = string(e)
	}
	return strings.Join(names, "|")
}

