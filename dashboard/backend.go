// ABOUTME: Backend interfaces consumed by the dashboard state machines
// ABOUTME: Satisfied by *api.Client; split per component so tests can fake narrowly
package dashboard

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/ltvdash/models"
)

// StatusSource reads the current sync status.
type StatusSource interface {
	GetStatus(ctx context.Context) (*models.SyncStatus, error)
}

// HistorySource reads one page of sync history.
type HistorySource interface {
	GetHistory(ctx context.Context, page int) (*models.HistoryPage, error)
}

// RunSource reads one run with its contact samples.
type RunSource interface {
	GetRun(ctx context.Context, id int64) (*models.SyncRunDetail, error)
}

// Backend is the full REST surface the dashboard drives.
type Backend interface {
	StatusSource
	HistorySource
	RunSource
	GetCustomFields(ctx context.Context) ([]models.CustomField, error)
	GetConfig(ctx context.Context) (*models.ConfigEnvelope, error)
	SaveConfig(ctx context.Context, payload models.ConfigPayload) (*models.SyncConfig, error)
	TriggerSync(ctx context.Context) (*models.TriggerResult, error)
	SendTestEmail(ctx context.Context) (*models.EmailTestResult, error)
}

// caller turns a blocking backend call into a tea.Cmd bounded by a timeout.
type caller struct {
	ctx     context.Context
	timeout time.Duration
}

func (c caller) cmd(fn func(ctx context.Context) tea.Msg) tea.Cmd {
	base, timeout := c.ctx, c.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(base, timeout)
		defer cancel()
		return fn(ctx)
	}
}
