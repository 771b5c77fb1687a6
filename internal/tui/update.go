package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/ssopt/internal/output"
)

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.gridModel.SetSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if !m.loading && !m.searching {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case NavigateMsg:
		if msg.Scene != m.currentScene {
			m.previousScene = m.currentScene
			m.currentScene = msg.Scene
		}
		return m, nil

	case ErrorMsg:
		m.err = msg.Err
		m.loading = false
		return m, nil

	case PlanLoadedMsg:
		m.loading = false
		m.plan = msg.Plan
		m.rate = msg.Rate
		m.rateSource = msg.RateSource
		m.summaries = output.NewReport(msg.Plan.Recipients, msg.Plan.CurrentDate, msg.Rate).Recipients
		m.gridModel.SetNames(m.recipientName(0), m.recipientName(1))
		return m, nil

	case SearchProgressMsg:
		if !m.searching {
			return m, nil
		}
		m.progress.Add(msg.Rows)
		return m, waitForProgress(m.progressCh)

	case SearchCompleteMsg:
		return m.finishSearch(msg), nil
	}

	return m.updateCurrentScene(msg)
}

func (m Model) finishSearch(msg SearchCompleteMsg) Model {
	m.searching = false
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	switch {
	case errors.Is(msg.Err, context.Canceled):
		m.status = "Search cancelled"
		return m
	case msg.Err != nil:
		m.err = msg.Err
		return m
	case msg.Grid != nil:
		m.gridModel.SetGrid(msg.Grid)
		m.status = fmt.Sprintf("%d cells in %s", msg.Grid.Cells(), msg.Grid.Elapsed.Round(time.Millisecond))
	default:
		m.gridModel.SetSingles(msg.MinAge, msg.Singles)
		m.status = fmt.Sprintf("%d final ages", len(msg.Singles))
	}
	m.previousScene = m.currentScene
	m.currentScene = SceneGrid
	return m
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.err != nil && msg.String() != "ctrl+c" {
		m.err = nil
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "q":
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit

	case "?":
		return m, navigate(SceneHelp)

	case "esc":
		if m.currentScene != SceneHome {
			back := m.previousScene
			if back == m.currentScene {
				back = SceneHome
			}
			return m, navigate(back)
		}
		return m, nil

	case "h":
		return m, navigate(SceneHome)

	case "o":
		return m, navigate(SceneGrid)

	case "r":
		return m.startSearch()

	case "x":
		if m.searching && m.cancel != nil {
			m.cancel()
		}
		return m, nil
	}

	return m.updateCurrentScene(msg)
}

func navigate(s Scene) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Scene: s} }
}

// updateCurrentScene delegates updates to the current scene's model
func (m Model) updateCurrentScene(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.currentScene == SceneGrid {
		var cmd tea.Cmd
		m.gridModel, cmd = m.gridModel.Update(msg)
		return m, cmd
	}
	return m, nil
}
