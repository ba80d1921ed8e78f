// ABOUTME: Interactive dashboard subcommand
// ABOUTME: Starts the full-screen TUI, or prints a snapshot when stdout is not a terminal
package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/harperreed/ltvdash/dashboard"
	"github.com/harperreed/ltvdash/settings"
	"github.com/harperreed/ltvdash/tui"
)

// DashboardCommand runs the TUI until the operator quits.
func DashboardCommand(backend dashboard.Backend, cfg *settings.Settings, logger *log.Logger, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		logger.Info("stdout is not a terminal, printing a snapshot instead")
		return StatusCommand(backend, args)
	}

	ctrl := dashboard.NewController(backend, dashboard.Options{
		Logger:         logger,
		FastInterval:   cfg.FastInterval.Duration,
		SlowInterval:   cfg.SlowInterval.Duration,
		RequestTimeout: cfg.Timeout.Duration,
	})

	logger.Info("dashboard started", "api_url", cfg.APIURL)
	p := tea.NewProgram(tui.NewModel(ctrl), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}
	logger.Info("dashboard stopped")
	return nil
}
