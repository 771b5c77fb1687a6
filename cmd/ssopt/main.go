package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"

	"github.com/rgehrsitz/ssopt/internal/cache"
	"github.com/rgehrsitz/ssopt/internal/config"
	"github.com/rgehrsitz/ssopt/internal/discount"
	"github.com/rgehrsitz/ssopt/internal/logging"
	"github.com/rgehrsitz/ssopt/internal/metrics"
	"github.com/rgehrsitz/ssopt/internal/mortality"
	"github.com/rgehrsitz/ssopt/internal/optimizer"
	"github.com/rgehrsitz/ssopt/internal/output"
	"github.com/rgehrsitz/ssopt/internal/ssadata"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "ssopt",
	Short: "Social Security filing strategy optimizer",
	Long: "Computes Social Security retirement, spousal and survivor benefits and searches\n" +
		"for the filing ages that maximize a household's discounted lifetime benefits.",
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ssopt %s (commit %s, built %s)\n", version, commit, date)
		if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
			fmt.Fprintln(cmd.OutOrStdout(), bi.Main.Path, bi.GoVersion)
		}
	},
}

// app is what every command builds from the settings file and flags.
type app struct {
	settings config.Settings
	logger   logging.Logger
	metrics  *metrics.Metrics
	cache    cache.Cache
	runner   *optimizer.Runner
	rates    *discount.Service
	tables   ssadata.Source

	closers []func()
}

// setup loads settings and builds the shared dependencies. Callers defer
// Close.
func setup(cmd *cobra.Command) (*app, error) {
	settingsFile, _ := cmd.Flags().GetString("settings")
	s, err := config.LoadSettings(settingsFile)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		s.LogLevel = lvl
	}
	if w, _ := cmd.Flags().GetInt("workers"); w > 0 {
		s.Workers = w
	}
	if dir, _ := cmd.Flags().GetString("life-tables"); dir != "" {
		s.DataDir = dir
	}

	logger, flush, err := logging.NewSugared(s.LogLevel)
	if err != nil {
		return nil, err
	}
	a := &app{
		settings: s,
		logger:   logger,
		metrics:  metrics.Default(),
		tables:   ssadata.Default(),
		closers:  []func(){flush},
	}
	a.cache = a.openCache(cmd.Context())
	a.runner = optimizer.NewRunner(logger, a.metrics)

	a.rates = discount.NewService()
	a.rates.TreasuryURL = s.TreasuryURL
	a.rates.FREDURL = s.FREDURL
	a.rates.Timeout = s.Timeout
	a.rates.Cache = a.cache
	a.rates.TTL = s.CacheTTL
	a.rates.Logger = logger
	a.rates.Metrics = a.metrics
	return a, nil
}

// openCache connects to Redis when configured and falls back to memory.
func (a *app) openCache(ctx context.Context) cache.Cache {
	if a.settings.RedisAddr == "" {
		return cache.NewMemoryCache()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	rc := cache.NewRedisCache(a.settings.RedisAddr, "ssopt:")
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		a.logger.Warnf("redis at %s unavailable, using in-memory cache: %v", a.settings.RedisAddr, err)
		_ = rc.Close()
		return cache.NewMemoryCache()
	}
	a.closers = append(a.closers, func() { _ = rc.Close() })
	return rc
}

// lifeTables is the configured life-table source: an HTTP mirror behind
// the cache when a URL is set, otherwise the data directory.
func (a *app) lifeTables() mortality.Source {
	if a.settings.LifeTableURL != "" {
		return mortality.CachedSource{
			Inner: mortality.NewHTTPSource(a.settings.LifeTableURL),
			Cache: a.cache,
			TTL:   a.settings.CacheTTL,
		}
	}
	return mortality.FileSource{Dir: a.settings.DataDir}
}

// loadPlan parses and converts a household file.
func (a *app) loadPlan(path string) (*config.Plan, error) {
	h, err := config.NewInputParser().LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	return config.BuildPlan(h, a.tables, time.Now())
}

// rate resolves the discount rate: the --rate flag, then the household,
// then the Treasury and FRED feeds. The flag must lie in [0, 1).
func (a *app) rate(cmd *cobra.Command, plan *config.Plan) (float64, string, error) {
	if cmd.Flags().Changed("rate") {
		r, _ := cmd.Flags().GetFloat64("rate")
		if !(r >= 0 && r < 1) {
			return 0, "", fmt.Errorf("invalid --rate %v: discount rate must be in [0, 1)", r)
		}
		return r, "flag", nil
	}
	if plan.DiscountRate != nil {
		return *plan.DiscountRate, "household", nil
	}
	res := a.rates.Rate(cmd.Context())
	return res.Float(), res.Source, nil
}

// newReport starts a report for plan at the resolved rate.
func (a *app) newReport(cmd *cobra.Command, plan *config.Plan) (*output.Report, error) {
	rate, source, err := a.rate(cmd, plan)
	if err != nil {
		return nil, err
	}
	report := output.NewReport(plan.Recipients, plan.CurrentDate, rate)
	report.RateSource = source
	return report, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// writeReport renders report to stdout, or to a timestamped file when
// --output-dir is set.
func writeReport(cmd *cobra.Command, report *output.Report) error {
	format, _ := cmd.Flags().GetString("format")
	dir, _ := cmd.Flags().GetString("output-dir")
	if dir == "" {
		return output.GenerateReport(cmd.OutOrStdout(), report, format)
	}

	f := output.GetFormatterByName(format)
	if f == nil {
		return fmt.Errorf("unsupported format: %s", format)
	}
	ext := f.Name()
	if ext == "console" || ext == "console-lite" {
		ext = "txt"
	}
	filename, err := output.WriteFormatted(f, report, dir, ext)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report saved to %s\n", filename)
	return nil
}

func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "console", "Output format (console, console-lite, csv, json, html)")
	cmd.Flags().StringP("output-dir", "o", "", "Write the report to a timestamped file in this directory")
	cmd.Flags().Float64("rate", 0, "Annual discount rate, e.g. 0.025 (overrides the household and the rate feeds)")
}

func init() {
	rootCmd.PersistentFlags().String("settings", "", "Settings file (default ./ssopt.yaml or $HOME/.config/ssopt/ssopt.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Int("workers", 0, "Grid search workers (default: number of CPUs)")
	rootCmd.PersistentFlags().String("life-tables", "", "Directory of life tables (overrides data_dir)")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
