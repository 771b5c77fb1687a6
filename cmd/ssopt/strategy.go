package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rgehrsitz/ssopt/internal/domain"
	"github.com/rgehrsitz/ssopt/internal/optimizer"
)

var strategyCmd = &cobra.Command{
	Use:   "strategy [household-file]",
	Short: "Find the best filing ages for the household's final ages",
	Long: "Searches every pair of filing ages for the final ages given in the household\n" +
		"file and reports the pair with the highest discounted lifetime benefits.\n" +
		"With --top N a couple's N best pairs are ranked.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		plan, err := a.loadPlan(args[0])
		if err != nil {
			return err
		}
		report, err := a.newReport(cmd, plan)
		if err != nil {
			return err
		}
		in, err := plan.StrategyInput(report.DiscountRate)
		if err != nil {
			return err
		}

		top, _ := cmd.Flags().GetInt("top")
		if top > 1 && len(plan.Recipients) == 2 {
			report.Strategies = a.runner.Rank(in, top)
		} else {
			report.Strategies = []domain.StrategyResult{a.runner.Strategy(in)}
		}
		return writeReport(cmd, report)
	},
}

var gridCmd = &cobra.Command{
	Use:   "grid [household-file]",
	Short: "Find the best filing ages for every combination of final ages",
	Long: "Runs the filing-age search for each pair of final ages between the household's\n" +
		"min and max final age. Interrupting the command cancels the search.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		plan, err := a.loadPlan(args[0])
		if err != nil {
			return err
		}
		report, err := a.newReport(cmd, plan)
		if err != nil {
			return err
		}
		cfg := plan.GridConfig(report.DiscountRate, a.settings.Workers)
		if cmd.Flags().Changed("min-age") {
			cfg.MinFinalAge, _ = cmd.Flags().GetInt("min-age")
		}
		if cmd.Flags().Changed("max-age") {
			cfg.MaxFinalAge, _ = cmd.Flags().GetInt("max-age")
		}
		if cmd.Flags().Changed("shortcut") {
			cfg.MonotonicShortcut, _ = cmd.Flags().GetBool("shortcut")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		var progress chan int
		done := make(chan struct{})
		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			progress = make(chan int, cfg.Width())
			go reportProgress(cmd, progress, cfg.Width(), done)
		} else {
			close(done)
		}

		grid, err := a.runner.Grid(ctx, cfg, progress)
		if progress != nil {
			close(progress)
		}
		<-done
		switch {
		case errors.Is(err, context.Canceled):
			return errors.New("grid search cancelled")
		case errors.Is(err, context.DeadlineExceeded):
			return errors.New("grid search timed out")
		case err != nil:
			return err
		}
		report.Grid = grid
		return writeReport(cmd, report)
	},
}

// reportProgress prints finished rows to stderr until progress closes.
func reportProgress(cmd *cobra.Command, progress <-chan int, total int, done chan<- struct{}) {
	defer close(done)
	rows := 0
	last := time.Now()
	for n := range progress {
		rows += n
		if rows == total || time.Since(last) > 250*time.Millisecond {
			fmt.Fprintf(cmd.ErrOrStderr(), "\rrows %d/%d", rows, total)
			last = time.Now()
		}
	}
	if rows > 0 {
		fmt.Fprintln(cmd.ErrOrStderr())
	}
}

var weightedCmd = &cobra.Command{
	Use:   "weighted [household-file]",
	Short: "Find the best filing ages weighted by life-table mortality",
	Long: "Buckets each recipient's death-age distribution from the SSA cohort life\n" +
		"tables and picks the filing ages with the highest probability-weighted\n" +
		"discounted lifetime benefits.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		plan, err := a.loadPlan(args[0])
		if err != nil {
			return err
		}
		report, err := a.newReport(cmd, plan)
		if err != nil {
			return err
		}
		in, err := plan.WeightedInput(cmd.Context(), a.lifeTables(), report.DiscountRate)
		if err != nil {
			return err
		}
		res, err := a.runner.Weighted(cmd.Context(), in)
		if err != nil {
			return err
		}
		report.Strategies = []domain.StrategyResult{res}
		return writeReport(cmd, report)
	},
}

func init() {
	addReportFlags(strategyCmd)
	strategyCmd.Flags().Int("top", 1, "Rank this many filing-age pairs (couples only)")

	addReportFlags(gridCmd)
	gridCmd.Flags().Int("min-age", optimizer.DefaultMinFinalAge, "Youngest final age in the grid")
	gridCmd.Flags().Int("max-age", optimizer.DefaultMaxFinalAge, "Oldest final age in the grid")
	gridCmd.Flags().Bool("shortcut", false, "Reuse an age-70 filing pair for longer lifespans")
	gridCmd.Flags().Duration("timeout", 0, "Cancel the search after this long (0 = no limit)")
	gridCmd.Flags().BoolP("quiet", "q", false, "Do not print progress")

	addReportFlags(weightedCmd)

	rootCmd.AddCommand(strategyCmd)
	rootCmd.AddCommand(gridCmd)
	rootCmd.AddCommand(weightedCmd)
}
