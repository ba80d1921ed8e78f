// ABOUTME: Sync job CLI commands
// ABOUTME: Triggers a sync and follows the job through the poller without a full-screen UI
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/harperreed/ltvdash/api"
	"github.com/harperreed/ltvdash/dashboard"
	"github.com/harperreed/ltvdash/metrics"
	"github.com/harperreed/ltvdash/models"
	"github.com/harperreed/ltvdash/settings"
)

// followModel runs the dashboard controller headless and prints status
// transitions as lines. With trigger set it starts a sync once the first
// status arrives and quits when that job finishes.
type followModel struct {
	ctrl    *dashboard.Controller
	out     io.Writer
	now     func() time.Time
	trigger bool

	baseline   int64 // last run id before the trigger
	ready      bool
	confirmed  bool
	sawRunning bool
	failing    bool

	err error
}

func newFollowModel(ctrl *dashboard.Controller, out io.Writer, trigger bool) *followModel {
	return &followModel{ctrl: ctrl, out: out, now: time.Now, trigger: trigger}
}

func (m *followModel) Init() tea.Cmd {
	return m.ctrl.Poller().Start()
}

func (m *followModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	wasRunning := m.ctrl.Running()
	cmd := m.ctrl.Update(msg)

	status, isStatus := msg.(dashboard.StatusMsg)
	if isStatus {
		m.reportPollHealth(status)
	}

	if m.trigger {
		return m, tea.Batch(cmd, m.followTrigger(isStatus))
	}

	if isStatus && !m.ready && m.ctrl.Poller().Snapshot() != nil {
		m.ready = true
		m.printf("%s\n", describeStatus(m.ctrl.Poller().Snapshot()))
		return m, cmd
	}
	if m.ready {
		m.reportTransition(wasRunning)
	}
	return m, cmd
}

func (m *followModel) View() string { return "" }

// followTrigger advances the trigger-and-wait flow after each message.
func (m *followModel) followTrigger(isStatus bool) tea.Cmd {
	snap := m.ctrl.Poller().Snapshot()

	if !m.ready {
		if snap == nil {
			return nil
		}
		m.ready = true
		if snap.LastRun != nil {
			m.baseline = snap.LastRun.ID
		}
		if m.ctrl.Running() {
			m.err = errors.New("a sync is already running")
			return tea.Quit
		}
		return m.ctrl.TriggerSync()
	}

	t := m.ctrl.Trigger()
	switch {
	case t.Phase == dashboard.TriggerRolledBack:
		m.err = errors.New(t.Reason)
		return tea.Quit
	case t.Phase == dashboard.TriggerConfirmed && !m.confirmed:
		m.confirmed = true
		m.printf("✓ %s, waiting for the job to finish...\n", orDefault(t.Message, "Sync triggered"))
	}

	if !m.confirmed || !isStatus || snap == nil {
		return nil
	}
	if snap.IsRunning {
		if !m.sawRunning && snap.RunningSyncID != nil {
			m.printf("⟳ sync #%d running\n", *snap.RunningSyncID)
		}
		m.sawRunning = true
		return nil
	}

	// A job that finished between two polls still shows up as a new last run.
	finished := m.sawRunning || (snap.LastRun != nil && snap.LastRun.ID != m.baseline)
	if !finished || m.ctrl.Running() {
		return nil
	}
	if snap.LastRun != nil {
		m.printf("%s\n", describeFinished(snap.LastRun))
		if snap.LastRun.Status == models.RunStatusFailed {
			m.err = fmt.Errorf("sync #%d failed", snap.LastRun.ID)
		}
	}
	return tea.Quit
}

func (m *followModel) reportTransition(wasRunning bool) {
	isRunning := m.ctrl.Running()
	snap := m.ctrl.Poller().Snapshot()
	switch {
	case !wasRunning && isRunning:
		id := "?"
		if snap != nil && snap.RunningSyncID != nil {
			id = fmt.Sprintf("%d", *snap.RunningSyncID)
		}
		m.printf("[%s] ⟳ sync #%s started\n", m.stamp(), id)
	case wasRunning && !isRunning && snap != nil && snap.LastRun != nil:
		m.printf("[%s] %s\n", m.stamp(), describeFinished(snap.LastRun))
	}
}

// reportPollHealth prints once when polling starts failing and once when it
// recovers.
func (m *followModel) reportPollHealth(msg dashboard.StatusMsg) {
	err := m.ctrl.Poller().LastErr()
	switch {
	case err != nil && !m.failing && msg.Err != nil:
		m.failing = true
		m.printf("[%s] ! status unavailable: %s\n", m.stamp(), api.Detail(err))
	case err == nil && m.failing && msg.Status != nil:
		m.failing = false
		m.printf("[%s] status reachable again\n", m.stamp())
	}
}

func (m *followModel) stamp() string {
	return m.now().Format("15:04:05")
}

func (m *followModel) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(m.out, format, args...)
}

func describeStatus(s *models.SyncStatus) string {
	switch {
	case s.IsRunning && s.RunningSyncID != nil:
		return fmt.Sprintf("⟳ sync #%d running", *s.RunningSyncID)
	case s.IsRunning:
		return "⟳ sync running"
	case s.LastRun == nil:
		return "idle, no syncs yet"
	}
	return fmt.Sprintf("idle, last run #%d %s", s.LastRun.ID, s.LastRun.Status)
}

func describeFinished(run *models.SyncRun) string {
	mark := "✓"
	switch run.Status {
	case models.RunStatusFailed:
		mark = "✗"
	case models.RunStatusWarning:
		mark = "!"
	}
	line := fmt.Sprintf("%s sync #%d finished: %s, %d processed, %d matched (%s), took %s",
		mark, run.ID, run.Status, run.ContactsProcessed, run.ContactsMatched,
		percent(metrics.RunMatchRate(run)), metrics.FormatDuration(run.DurationSeconds))
	if msg := models.StringValue(run.ErrorMessage); msg != "" {
		line += "\n  " + msg
	}
	return line
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// runFollow drives model until it quits or the process is interrupted.
func runFollow(model *followModel) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(nil),
		tea.WithoutRenderer(),
		tea.WithoutSignalHandler(),
	)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("follow failed: %w", err)
	}
	return model.err
}

func newHeadlessController(backend dashboard.Backend, cfg *settings.Settings, logger *log.Logger) *dashboard.Controller {
	return dashboard.NewController(backend, dashboard.Options{
		Logger:         logger,
		FastInterval:   cfg.FastInterval.Duration,
		SlowInterval:   cfg.SlowInterval.Duration,
		RequestTimeout: cfg.Timeout.Duration,
	})
}

// TriggerCommand starts a sync. With --wait it follows the job to completion
// and exits non-zero if the run failed.
func TriggerCommand(backend dashboard.Backend, cfg *settings.Settings, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("trigger", flag.ExitOnError)
	wait := fs.Bool("wait", false, "Wait for the sync to finish")
	_ = fs.Parse(args)

	if *wait {
		return runFollow(newFollowModel(newHeadlessController(backend, cfg, logger), stdout, true))
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	result, err := backend.TriggerSync(ctx)
	if err != nil {
		return fmt.Errorf("failed to trigger sync: %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "✓ %s (config %d)\n", orDefault(result.Message, "Sync triggered"), result.ConfigID)
	return nil
}

// WatchCommand prints sync start and finish events until interrupted.
func WatchCommand(backend dashboard.Backend, cfg *settings.Settings, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	_ = fs.Parse(args)

	_, _ = fmt.Fprintf(stdout, "Watching sync status (every %s while running, %s otherwise). Ctrl+C to stop.\n",
		cfg.FastInterval.Duration, cfg.SlowInterval.Duration)
	return runFollow(newFollowModel(newHeadlessController(backend, cfg, logger), stdout, false))
}
