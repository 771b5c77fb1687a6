package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/ssopt/internal/config"
	"github.com/rgehrsitz/ssopt/internal/discount"
	"github.com/rgehrsitz/ssopt/internal/metrics"
	"github.com/rgehrsitz/ssopt/internal/optimizer"
	"github.com/rgehrsitz/ssopt/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: ssopt-tui <household-file>")
		os.Exit(1)
	}
	planPath := os.Args[1]
	if _, err := os.Stat(planPath); os.IsNotExist(err) {
		fmt.Printf("Error: household file not found: %s\n", planPath)
		os.Exit(1)
	}

	settings, err := config.LoadSettings("")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// The alternate screen owns the terminal, so the TUI runs without a logger.
	m := metrics.Default()
	rates := discount.NewService()
	rates.TreasuryURL = settings.TreasuryURL
	rates.FREDURL = settings.FREDURL
	rates.Timeout = settings.Timeout
	rates.Metrics = m

	model := tui.NewModel(planPath, tui.Options{
		Runner:  optimizer.NewRunner(nil, m),
		Rates:   rates,
		Workers: settings.Workers,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
