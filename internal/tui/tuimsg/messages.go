// Package tuimsg defines the messages exchanged between TUI commands and
// the top-level model.
package tuimsg

import (
	"github.com/rgehrsitz/ssopt/internal/config"
	"github.com/rgehrsitz/ssopt/internal/domain"
	"github.com/rgehrsitz/ssopt/internal/optimizer"
)

// PlanLoadedMsg signals the household file was parsed and the discount
// rate resolved.
type PlanLoadedMsg struct {
	Plan       *config.Plan
	Rate       float64
	RateSource string
}

// ErrorMsg displays an error to the user
type ErrorMsg struct {
	Err error
}

// SearchStartedMsg signals a search has begun over Total rows.
type SearchStartedMsg struct {
	Total int
}

// SearchProgressMsg reports finished rows.
type SearchProgressMsg struct {
	Rows int
}

// SearchCompleteMsg carries a couple's grid or a single recipient's
// per-final-age results. Err is set when the search failed or was
// cancelled.
type SearchCompleteMsg struct {
	Grid    *optimizer.GridResult
	Singles []domain.StrategyResult
	MinAge  int
	Err     error
}
