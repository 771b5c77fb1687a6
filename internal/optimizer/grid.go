package optimizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rgehrsitz/ssopt/internal/domain"
	"github.com/rgehrsitz/ssopt/internal/logging"
	"github.com/rgehrsitz/ssopt/internal/metrics"
)

// GridResult holds the optimal strategy for every pair of final ages in
// [MinAge, MaxAge]. Cells are stored flat: the cell for final ages (a1, a2)
// is at (a1-MinAge)*Width + (a2-MinAge).
type GridResult struct {
	RunID       uuid.UUID
	MinAge      int
	MaxAge      int
	Width       int
	FilingAges1 []domain.MonthDuration
	FilingAges2 []domain.MonthDuration
	TotalCents  []float64

	// ShortcutHits counts cells filled by reusing an age-70 pair.
	ShortcutHits int
	Elapsed      time.Duration
}

func newGridResult(minAge, maxAge int) *GridResult {
	width := maxAge - minAge + 1
	n := width * width
	return &GridResult{
		RunID:       uuid.New(),
		MinAge:      minAge,
		MaxAge:      maxAge,
		Width:       width,
		FilingAges1: make([]domain.MonthDuration, n),
		FilingAges2: make([]domain.MonthDuration, n),
		TotalCents:  make([]float64, n),
	}
}

// Index returns the flat index for final ages (a1, a2), or -1 when either is
// outside the grid.
func (g *GridResult) Index(finalAge1, finalAge2 int) int {
	if finalAge1 < g.MinAge || finalAge1 > g.MaxAge || finalAge2 < g.MinAge || finalAge2 > g.MaxAge {
		return -1
	}
	return (finalAge1-g.MinAge)*g.Width + (finalAge2 - g.MinAge)
}

// At returns the strategy stored for final ages (a1, a2).
func (g *GridResult) At(finalAge1, finalAge2 int) (domain.StrategyResult, bool) {
	idx := g.Index(finalAge1, finalAge2)
	if idx < 0 {
		return domain.StrategyResult{}, false
	}
	return domain.StrategyResult{
		FilingAge1: g.FilingAges1[idx],
		FilingAge2: g.FilingAges2[idx],
		FinalAge1:  domain.YearsMonths(finalAge1, 0),
		FinalAge2:  domain.YearsMonths(finalAge2, 0),
		TotalCents: g.TotalCents[idx],
	}, true
}

// Cells is the number of cells in the grid.
func (g *GridResult) Cells() int {
	return len(g.TotalCents)
}

// rowWriter is one worker's exclusive window onto the grid: rows [lo, hi).
// Workers never write outside their window and nobody reads the grid until
// every worker has returned, so the shared slices need no locking. Carried
// shortcut pairs go through gridRows, not the grid.
type rowWriter struct {
	grid   *GridResult
	lo, hi int
}

func (w rowWriter) set(row, col int, filing1, filing2 domain.MonthDuration, total float64) {
	if row < w.lo || row >= w.hi {
		panic(fmt.Sprintf("row %d outside worker window [%d, %d)", row, w.lo, w.hi))
	}
	idx := row*w.grid.Width + col
	w.grid.FilingAges1[idx] = filing1
	w.grid.FilingAges2[idx] = filing2
	w.grid.TotalCents[idx] = total
}

// Runner runs grid searches. The zero value works; set Logger and Metrics
// to observe runs.
type Runner struct {
	Logger  logging.Logger
	Metrics *metrics.Metrics
}

// NewRunner returns a Runner reporting to logger and m.
func NewRunner(logger logging.Logger, m *metrics.Metrics) *Runner {
	return &Runner{Logger: logger, Metrics: m}
}

// Grid computes the optimal filing pair for every combination of final ages
// in cfg. Rows (recipient 1's final age) are handed to workers in increasing
// order and each row is filled by exactly one worker. progress, if non-nil,
// receives 1 for every finished row; sends never block. A cancelled ctx stops
// every worker at its next row and Grid returns ctx's error with no partial
// result. The result does not depend on cfg.Workers.
func (r *Runner) Grid(ctx context.Context, cfg Config, progress chan<- int) (*GridResult, error) {
	log := logging.OrNop(r.Logger)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	width := cfg.Width()
	if workers > width {
		workers = width
	}

	start := time.Now()
	grid := newGridResult(cfg.MinFinalAge, cfg.MaxFinalAge)
	log.Infof("grid run %s: final ages %d-%d, %d workers, shortcut=%t", grid.RunID, cfg.MinFinalAge, cfg.MaxFinalAge, workers, cfg.MonotonicShortcut)

	// Final dates per recipient, indexed by final age offset.
	finals := [2][]domain.MonthDate{make([]domain.MonthDate, width), make([]domain.MonthDate, width)}
	last := domain.MonthDate(0)
	for i, rec := range cfg.Recipients {
		for k := 0; k < width; k++ {
			finals[i][k] = FinalDate(rec, domain.YearsMonths(cfg.MinFinalAge+k, 0))
		}
		last = domain.MaxMonthDate(last, finals[i][width-1])
	}
	table := tableFor(cfg.Recipients, last, cfg.CurrentDate, cfg.DiscountRate)
	rows := newGridRows(width, cfg.MonotonicShortcut)

	hits := make([]int, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		worker := w
		g.Go(func() error {
			s := newSearch(cfg.Recipients, cfg.bounds, table)
			n, err := runRows(gctx, s, grid, rows, finals, progress)
			hits[worker] = n
			return err
		})
	}

	err := g.Wait()
	elapsed := time.Since(start)
	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			outcome = metrics.OutcomeCancelled
		}
		r.Metrics.ObserveRun(metrics.RunKindGrid, outcome, elapsed)
		log.Warnf("grid run %s stopped after %s: %v", grid.RunID, elapsed, err)
		return nil, err
	}

	for _, n := range hits {
		grid.ShortcutHits += n
	}
	grid.Elapsed = elapsed
	r.Metrics.ObserveRun(metrics.RunKindGrid, metrics.OutcomeOK, elapsed)
	r.Metrics.AddCells(grid.Cells())
	r.Metrics.AddShortcutHits(grid.ShortcutHits)
	log.Infof("grid run %s: %d cells in %s (%d shortcut hits)", grid.RunID, grid.Cells(), elapsed, grid.ShortcutHits)
	return grid, nil
}

type filingPair struct {
	i, j int
}

// gridRows hands out row indices in increasing order. With the shortcut on
// it also carries every cell's filing pair to the row below: a cell waits
// until the cell above it is published, so rows run as a wavefront and the
// carried pairs match a single-worker run.
type gridRows struct {
	next     chan int
	shortcut bool
	pairs    [][]filingPair
	ready    [][]chan struct{}
}

func newGridRows(width int, shortcut bool) *gridRows {
	rows := &gridRows{next: make(chan int, width), shortcut: shortcut}
	for row := 0; row < width; row++ {
		rows.next <- row
	}
	close(rows.next)
	if !shortcut {
		return rows
	}
	rows.pairs = make([][]filingPair, width)
	rows.ready = make([][]chan struct{}, width)
	for row := range rows.ready {
		rows.pairs[row] = make([]filingPair, width)
		rows.ready[row] = make([]chan struct{}, width)
		for col := range rows.ready[row] {
			rows.ready[row][col] = make(chan struct{})
		}
	}
	return rows
}

// above waits for the pair published at (row-1, col).
func (g *gridRows) above(ctx context.Context, row, col int) (filingPair, error) {
	select {
	case <-g.ready[row-1][col]:
		return g.pairs[row-1][col], nil
	case <-ctx.Done():
		return filingPair{}, ctx.Err()
	}
}

func (g *gridRows) publish(row, col int, p filingPair) {
	g.pairs[row][col] = p
	close(g.ready[row][col])
}

// runRows fills rows taken from rows until none are left and returns the
// number of shortcut hits. A worker finishes its row before taking the next,
// so the row above any row being filled is always owned by a running worker.
func runRows(ctx context.Context, s *search, grid *GridResult, rows *gridRows, finals [2][]domain.MonthDate, progress chan<- int) (int, error) {
	width := grid.Width
	var colSums [][]float64
	if !s.empty() {
		colSums = make([][]float64, width)
		for col := 0; col < width; col++ {
			colSums[col] = s.personalSums(1, finals[1][col])
		}
	}

	hits := 0
	for row := range rows.next {
		if err := ctx.Err(); err != nil {
			return hits, err
		}
		w := rowWriter{grid: grid, lo: row, hi: row + 1}
		if s.empty() {
			for col := 0; col < width; col++ {
				w.set(row, col, 0, 0, 0)
			}
		} else {
			n, err := fillRow(ctx, s, w, rows, row, finals, colSums)
			hits += n
			if err != nil {
				return hits, err
			}
		}
		report(progress, 1)
	}
	return hits, nil
}

// fillRow computes one row. With the shortcut on, a pair whose first filing
// age is 70 is reused for the cell below it, and the first pair in the row
// whose second filing age is 70 is reused for the rest of the row.
func fillRow(ctx context.Context, s *search, w rowWriter, rows *gridRows, row int, finals [2][]domain.MonthDate, colSums [][]float64) (int, error) {
	at70 := func(ages []domain.MonthDuration, k int) bool {
		return ages[k] == domain.FilingAgeCeiling
	}

	hits := 0
	rowSums := s.personalSums(0, finals[0][row])
	rowPair, haveRowPair := filingPair{}, false
	for col := 0; col < w.grid.Width; col++ {
		cellFinals := [2]domain.MonthDate{finals[0][row], finals[1][col]}
		var p filingPair
		reused := false
		if rows.shortcut && row > 0 {
			above, err := rows.above(ctx, row, col)
			if err != nil {
				return hits, err
			}
			if at70(s.ages[0], above.i) {
				p, reused = above, true
			}
		}
		if !reused && rows.shortcut && haveRowPair {
			p, reused = rowPair, true
		}
		if reused {
			hits++
		} else {
			p.i, p.j, _ = s.best(rowSums, colSums[col], cellFinals)
		}

		total := s.total(p.i, p.j, rowSums, colSums[col], cellFinals)
		w.set(row, col, s.ages[0][p.i], s.ages[1][p.j], total)
		if rows.shortcut {
			rows.publish(row, col, p)
		}
		if !haveRowPair && at70(s.ages[1], p.j) {
			rowPair, haveRowPair = p, true
		}
	}
	return hits, nil
}

func report(progress chan<- int, rows int) {
	if progress == nil {
		return
	}
	select {
	case progress <- rows:
	default:
	}
}

// SearchGrid is a convenience wrapper running Grid with no observers.
func SearchGrid(ctx context.Context, cfg Config) (*GridResult, error) {
	return (&Runner{}).Grid(ctx, cfg, nil)
}
