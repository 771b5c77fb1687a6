package integration

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/ssopt/internal/config"
	"github.com/rgehrsitz/ssopt/internal/mortality"
	"github.com/rgehrsitz/ssopt/internal/optimizer"
	"github.com/rgehrsitz/ssopt/internal/output"
	"github.com/rgehrsitz/ssopt/internal/ssadata"
)

const householdFixture = "../testdata/household.yaml"

// TestIntegrationSuite runs all integration tests
func TestIntegrationSuite(t *testing.T) {
	t.Run("Basic_Integration", testBasicIntegration)
	t.Run("Error_Handling", testErrorHandling)
	t.Run("Data_Consistency", testDataConsistency)
	t.Run("Performance", testPerformance)
}

func loadPlan(t *testing.T) *config.Plan {
	t.Helper()
	h, err := config.NewInputParser().LoadFromFile(householdFixture)
	require.NoError(t, err)
	plan, err := config.BuildPlan(h, ssadata.Default(), time.Now())
	require.NoError(t, err)
	return plan
}

func gridConfig(plan *config.Plan, minAge, maxAge int) optimizer.Config {
	cfg := plan.GridConfig(plan.Rate(0.025), 2)
	cfg.MinFinalAge, cfg.MaxFinalAge = minAge, maxAge
	return cfg
}

func testBasicIntegration(t *testing.T) {
	plan := loadPlan(t)
	in, err := plan.StrategyInput(plan.Rate(0.025))
	require.NoError(t, err)

	best := optimizer.OptimalStrategyOptimized(in)
	assert.Greater(t, best.TotalCents, 0.0)

	report := output.NewReport(plan.Recipients, plan.CurrentDate, in.DiscountRate)
	report.Strategies = optimizer.RankStrategies(in, 5)
	weighted, err := plan.WeightedInput(context.Background(), mortality.FileSource{Dir: "../testdata/lifetables"}, in.DiscountRate)
	require.NoError(t, err)
	report.Strategies = append(report.Strategies, optimizer.OptimalStrategyWeighted(weighted))

	for _, format := range output.Formats {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, output.GenerateReport(&buf, report, format))
			assert.NotEmpty(t, buf.String())
		})
	}
}

func testErrorHandling(t *testing.T) {
	parser := config.NewInputParser()
	_, err := parser.LoadFromFile("../testdata/nonexistent.yaml")
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("recipients:\n  - name: Sam\n"), 0644))
	_, err = parser.LoadFromFile(bad)
	assert.Error(t, err, "a recipient needs a birth date")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	grid, err := (&optimizer.Runner{}).Grid(ctx, gridConfig(loadPlan(t), 62, 70), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, grid)
}

func testDataConsistency(t *testing.T) {
	plan := loadPlan(t)
	in, err := plan.StrategyInput(plan.Rate(0.025))
	require.NoError(t, err)

	t.Run("optimized_matches_brute_force", func(t *testing.T) {
		fast := optimizer.OptimalStrategyOptimized(in)
		slow := optimizer.OptimalStrategyBruteForce(in)
		assert.Equal(t, slow.FilingAge1, fast.FilingAge1)
		assert.Equal(t, slow.FilingAge2, fast.FilingAge2)
		assert.InDelta(t, slow.TotalCents, fast.TotalCents, 0.5)
	})

	t.Run("grid_matches_strategy", func(t *testing.T) {
		grid, err := optimizer.SearchGrid(context.Background(), gridConfig(plan, 84, 90))
		require.NoError(t, err)

		cell, ok := grid.At(85, 90)
		require.True(t, ok)
		best := optimizer.OptimalStrategyOptimized(in)
		assert.Equal(t, best.FilingAge1, cell.FilingAge1)
		assert.Equal(t, best.FilingAge2, cell.FilingAge2)
		assert.InDelta(t, best.TotalCents, cell.TotalCents, 0.5)
	})

	t.Run("repeatable", func(t *testing.T) {
		cfg := gridConfig(plan, 80, 84)
		first, err := optimizer.SearchGrid(context.Background(), cfg)
		require.NoError(t, err)
		cfg.Workers = 1
		second, err := optimizer.SearchGrid(context.Background(), cfg)
		require.NoError(t, err)

		assert.Equal(t, first.FilingAges1, second.FilingAges1)
		assert.Equal(t, first.FilingAges2, second.FilingAges2)
		assert.Equal(t, first.TotalCents, second.TotalCents, "worker count does not change results")
	})
}

func testPerformance(t *testing.T) {
	if testing.Short() {
		t.Skip("full grid skipped in short mode")
	}
	plan := loadPlan(t)
	cfg := gridConfig(plan, optimizer.DefaultMinFinalAge, 100)
	cfg.Workers = runtime.NumCPU()
	cfg.MonotonicShortcut = true

	start := time.Now()
	grid, err := optimizer.SearchGrid(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 39*39, grid.Cells())
	assert.Less(t, time.Since(start), time.Minute, "full grid should finish well within a minute")
}
