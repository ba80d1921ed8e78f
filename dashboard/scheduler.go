package dashboard

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Scheduler arms one-shot timers. Tests substitute a virtual clock.
type Scheduler interface {
	// After returns a command that delivers msg once d has elapsed.
	After(d time.Duration, msg tea.Msg) tea.Cmd
}

// TickScheduler schedules on the wall clock via tea.Tick.
type TickScheduler struct{}

func (TickScheduler) After(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return msg
	})
}
