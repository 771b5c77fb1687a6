package tui

import "github.com/rgehrsitz/ssopt/internal/tui/tuimsg"

// Scene represents different screens in the TUI
type Scene int

const (
	SceneHome Scene = iota
	SceneGrid
	SceneHelp
)

func (s Scene) String() string {
	switch s {
	case SceneHome:
		return "Household"
	case SceneGrid:
		return "Optimal filing ages"
	case SceneHelp:
		return "Help"
	default:
		return "Unknown"
	}
}

// NavigateMsg switches to a different scene
type NavigateMsg struct {
	Scene Scene
}

type (
	PlanLoadedMsg     = tuimsg.PlanLoadedMsg
	ErrorMsg          = tuimsg.ErrorMsg
	SearchStartedMsg  = tuimsg.SearchStartedMsg
	SearchProgressMsg = tuimsg.SearchProgressMsg
	SearchCompleteMsg = tuimsg.SearchCompleteMsg
)
