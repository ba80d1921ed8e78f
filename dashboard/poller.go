// ABOUTME: Sync status poller with adaptive cadence
// ABOUTME: Explicit idle/fast/slow state machine driven by a single generation-tagged timer
package dashboard

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/harperreed/ltvdash/models"
)

// Default poll cadences.
const (
	DefaultFastInterval = 5 * time.Second
	DefaultSlowInterval = 30 * time.Second
)

// PollState is the poller's position in its state machine.
type PollState int

const (
	PollIdle PollState = iota
	PollFast
	PollSlow
)

func (s PollState) String() string {
	switch s {
	case PollFast:
		return "fast"
	case PollSlow:
		return "slow"
	default:
		return "idle"
	}
}

// pollTickMsg fires when the armed poll timer elapses. Ticks from a
// superseded timer carry an old timerID and are ignored.
type pollTickMsg struct {
	timerID uint64
}

// StatusMsg carries the result of one status fetch.
type StatusMsg struct {
	seq    uint64
	Status *models.SyncStatus
	Err    error
}

// PollResult describes what a status response changed.
type PollResult struct {
	Applied   bool
	Started   bool // belief flipped not-running -> running
	Completed bool // belief flipped running -> not-running; fires once per transition
}

// Poller tracks whether a sync job is running and re-queries status at a
// cadence chosen from its own belief: fast while running, slow otherwise.
type Poller struct {
	source StatusSource
	sched  Scheduler
	seq    *Sequencer
	call   caller
	logger *log.Logger

	fast time.Duration
	slow time.Duration

	state   PollState
	running bool
	held    bool
	timerID uint64

	snapshot *models.SyncStatus
	lastErr  error
}

// NewPoller creates an idle poller. Zero intervals take the defaults.
func NewPoller(source StatusSource, sched Scheduler, seq *Sequencer, call caller, logger *log.Logger, fast, slow time.Duration) *Poller {
	if fast <= 0 {
		fast = DefaultFastInterval
	}
	if slow <= 0 {
		slow = DefaultSlowInterval
	}
	return &Poller{
		source: source,
		sched:  sched,
		seq:    seq,
		call:   call,
		logger: logger,
		fast:   fast,
		slow:   slow,
	}
}

// Running is the poller's local belief that a job is running.
func (p *Poller) Running() bool { return p.running }

// State returns the current state machine position.
func (p *Poller) State() PollState { return p.state }

// Snapshot is the most recent status the server reported, or nil.
func (p *Poller) Snapshot() *models.SyncStatus { return p.snapshot }

// LastErr is the most recent poll failure, cleared by the next success.
func (p *Poller) LastErr() error { return p.lastErr }

// Interval is the cadence implied by the current belief.
func (p *Poller) Interval() time.Duration {
	if p.running {
		return p.fast
	}
	return p.slow
}

// Start leaves the idle state and fetches status immediately. The first
// timer is armed when that fetch resolves.
func (p *Poller) Start() tea.Cmd {
	p.state = p.cadenceState()
	return p.Poll()
}

// Stop returns to idle; any armed timer is ignored when it fires.
func (p *Poller) Stop() {
	p.state = PollIdle
	p.timerID++
}

// Poll fetches status now, superseding any fetch still in flight.
func (p *Poller) Poll() tea.Cmd {
	seq := p.seq.Next(keyStatus)
	source := p.source
	return p.call.cmd(func(ctx context.Context) tea.Msg {
		status, err := source.GetStatus(ctx)
		return StatusMsg{seq: seq, Status: status, Err: err}
	})
}

// Assume overrides the belief locally, ahead of any server confirmation.
// While held, a not-running report cannot lower the belief; Release ends
// the hold. Changing the belief cancels the armed timer and re-arms at the
// new cadence.
func (p *Poller) Assume(running bool, hold bool) tea.Cmd {
	p.held = hold
	if running == p.running {
		return nil
	}
	p.running = running
	p.seq.Invalidate(keyStatus)
	if p.state == PollIdle {
		return nil
	}
	return p.arm()
}

// Release ends a hold placed by Assume.
func (p *Poller) Release() {
	p.held = false
}

// HandleTick starts the poll for a live timer. Stale ticks return nil.
func (p *Poller) HandleTick(msg pollTickMsg) tea.Cmd {
	if p.state == PollIdle || msg.timerID != p.timerID {
		return nil
	}
	return p.Poll()
}

// HandleStatus applies a status response and arms the next tick. Failures
// leave the belief untouched; they are logged, not surfaced.
func (p *Poller) HandleStatus(msg StatusMsg) (PollResult, tea.Cmd) {
	if !p.seq.IsLatest(keyStatus, msg.seq) {
		return PollResult{}, nil
	}

	var result PollResult
	if msg.Err != nil || msg.Status == nil {
		p.lastErr = msg.Err
		p.logger.Warn("status poll failed", "err", msg.Err, "running", p.running)
	} else {
		p.lastErr = nil
		p.snapshot = msg.Status
		result.Applied = true

		was := p.running
		now := msg.Status.IsRunning
		if p.held && !now {
			now = true
		}
		p.running = now
		result.Started = !was && now
		result.Completed = was && !now
		if result.Completed {
			p.logger.Info("sync job completed")
		}
	}

	if p.state == PollIdle {
		return result, nil
	}
	return result, p.arm()
}

func (p *Poller) cadenceState() PollState {
	if p.running {
		return PollFast
	}
	return PollSlow
}

// arm replaces the armed timer with one at the current cadence.
func (p *Poller) arm() tea.Cmd {
	p.timerID++
	p.state = p.cadenceState()
	return p.sched.After(p.Interval(), pollTickMsg{timerID: p.timerID})
}
