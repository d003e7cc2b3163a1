package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/accidents-dashboard-tui/internal/app"
	"github.com/j-veylop/accidents-dashboard-tui/internal/config"
	"github.com/j-veylop/accidents-dashboard-tui/internal/logger"
	"github.com/j-veylop/accidents-dashboard-tui/internal/services"
	"github.com/j-veylop/accidents-dashboard-tui/internal/ui/tabs/correlation"
	"github.com/j-veylop/accidents-dashboard-tui/internal/ui/tabs/info"
	"github.com/j-veylop/accidents-dashboard-tui/internal/ui/tabs/maptab"
	"github.com/j-veylop/accidents-dashboard-tui/internal/ui/tabs/overview"
	"github.com/j-veylop/accidents-dashboard-tui/internal/ui/tabs/temporal"
)

// runTUI loads the dataset and runs the Bubble Tea program until the user
// quits. A failed load still opens the dashboard, which explains the error.
func runTUI(cfg *config.Config) error {
	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	model := app.NewModel(svcManager)

	// Order matches app.TabID.
	state := model.GetState()
	model.SetTabs([]app.Tab{
		overview.New(state),
		temporal.New(state),
		correlation.New(state),
		maptab.New(state, svcManager),
		info.New(state, cfg),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		if _, ok := <-sigChan; ok {
			p.Send(tea.Quit())
		}
	}()

	logger.Info("starting dashboard", "accidents", cfg.AccidentsPath, "municipalities", cfg.MunicipalitiesPath)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
