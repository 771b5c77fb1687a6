// Package tui is a terminal browser for a household's optimal filing ages.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/ssopt/internal/config"
	"github.com/rgehrsitz/ssopt/internal/discount"
	"github.com/rgehrsitz/ssopt/internal/domain"
	"github.com/rgehrsitz/ssopt/internal/optimizer"
	"github.com/rgehrsitz/ssopt/internal/output"
	"github.com/rgehrsitz/ssopt/internal/ssadata"
	"github.com/rgehrsitz/ssopt/internal/tui/components"
	"github.com/rgehrsitz/ssopt/internal/tui/scenes"
)

const rateTimeout = 10 * time.Second

// RateSource supplies the discount rate when the household leaves it unset.
type RateSource interface {
	Rate(ctx context.Context) discount.Result
}

// Options are the dependencies the TUI runs searches with. Every field is
// optional.
type Options struct {
	Runner  *optimizer.Runner
	Rates   RateSource
	Tables  ssadata.Source
	Workers int
}

// Model represents the entire application state
type Model struct {
	currentScene  Scene
	previousScene Scene

	width  int
	height int

	planPath string
	opts     Options

	plan       *config.Plan
	summaries  []output.RecipientSummary
	rate       float64
	rateSource string

	// Search state. progressCh and cancel belong to the running search.
	searching  bool
	progress   *components.ProgressBar
	progressCh chan int
	cancel     context.CancelFunc
	status     string

	gridModel *scenes.GridModel
	spinner   spinner.Model

	err            error
	loading        bool
	loadingMessage string
}

// NewModel creates a model that loads the household file at planPath.
func NewModel(planPath string, opts Options) Model {
	if opts.Runner == nil {
		opts.Runner = &optimizer.Runner{}
	}
	if opts.Tables == nil {
		opts.Tables = ssadata.Default()
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = StatusKeyStyle
	return Model{
		currentScene:   SceneHome,
		planPath:       planPath,
		opts:           opts,
		gridModel:      scenes.NewGridModel(),
		spinner:        s,
		loading:        true,
		loadingMessage: "Loading household...",
		width:          80,
		height:         24,
	}
}

// Init initializes the model (required by tea.Model interface)
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadPlanCmd(m.planPath, m.opts))
}

// loadPlanCmd parses the household file and resolves the discount rate.
func loadPlanCmd(path string, opts Options) tea.Cmd {
	return func() tea.Msg {
		h, err := config.NewInputParser().LoadFromFile(path)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		plan, err := config.BuildPlan(h, opts.Tables, time.Now())
		if err != nil {
			return ErrorMsg{Err: err}
		}

		msg := PlanLoadedMsg{Plan: plan, Rate: discount.DefaultRate.InexactFloat64(), RateSource: discount.SourceDefault}
		switch {
		case plan.DiscountRate != nil:
			msg.Rate, msg.RateSource = *plan.DiscountRate, "household"
		case opts.Rates != nil:
			ctx, cancel := context.WithTimeout(context.Background(), rateTimeout)
			defer cancel()
			res := opts.Rates.Rate(ctx)
			msg.Rate, msg.RateSource = res.Float(), res.Source
		}
		return msg
	}
}

// startSearch launches a grid search for a couple, or a per-final-age
// search for a single recipient, and starts listening for progress.
func (m Model) startSearch() (Model, tea.Cmd) {
	if m.plan == nil || m.searching {
		return m, nil
	}
	cfg := m.plan.GridConfig(m.rate, m.opts.Workers)
	if cfg.MaxFinalAge < cfg.MinFinalAge {
		m.err = fmt.Errorf("invalid final age range [%d, %d]", cfg.MinFinalAge, cfg.MaxFinalAge)
		return m, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan int, cfg.Width())
	m.searching = true
	m.cancel = cancel
	m.progressCh = ch
	m.progress = components.NewProgressBar(cfg.Width()).
		WithLabel(fmt.Sprintf("Searching final ages %d-%d", cfg.MinFinalAge, cfg.MaxFinalAge))
	m.status = ""

	var run tea.Cmd
	if len(m.plan.Recipients) == 2 {
		run = runGridCmd(ctx, m.opts.Runner, cfg, ch)
	} else {
		run = runSinglesCmd(ctx, m.plan, cfg, ch)
	}
	return m, tea.Batch(run, waitForProgress(ch), m.spinner.Tick)
}

func runGridCmd(ctx context.Context, runner *optimizer.Runner, cfg optimizer.Config, ch chan int) tea.Cmd {
	return func() tea.Msg {
		defer close(ch)
		grid, err := runner.Grid(ctx, cfg, ch)
		return SearchCompleteMsg{Grid: grid, MinAge: cfg.MinFinalAge, Err: err}
	}
}

func runSinglesCmd(ctx context.Context, plan *config.Plan, cfg optimizer.Config, ch chan int) tea.Cmd {
	return func() tea.Msg {
		defer close(ch)
		r := plan.Recipients[0]
		results := make([]domain.StrategyResult, 0, cfg.Width())
		for age := cfg.MinFinalAge; age <= cfg.MaxFinalAge; age++ {
			if err := ctx.Err(); err != nil {
				return SearchCompleteMsg{Err: err}
			}
			final := optimizer.FinalDate(r, domain.YearsMonths(age, 0))
			results = append(results, optimizer.OptimalSingle(r, final, plan.CurrentDate, cfg.DiscountRate))
			select {
			case ch <- 1:
			default:
			}
		}
		return SearchCompleteMsg{Singles: results, MinAge: cfg.MinFinalAge}
	}
}

// waitForProgress turns the next progress report into a message. It
// returns nil once the search closes the channel.
func waitForProgress(ch <-chan int) tea.Cmd {
	return func() tea.Msg {
		rows, ok := <-ch
		if !ok {
			return nil
		}
		return SearchProgressMsg{Rows: rows}
	}
}

func (m Model) recipientName(i int) string {
	if i < len(m.summaries) && m.summaries[i].Name != "" {
		return m.summaries[i].Name
	}
	return fmt.Sprintf("Recipient %d", i+1)
}
