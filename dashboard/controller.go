// ABOUTME: Dashboard controller composing poller, pager and detail viewer
// ABOUTME: Owns dashboard state, converts operator intents into backend commands, derives chart data
package dashboard

import (
	"context"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/harperreed/ltvdash/api"
	"github.com/harperreed/ltvdash/metrics"
	"github.com/harperreed/ltvdash/models"
)

// DefaultRequestTimeout bounds every backend call made by the dashboard.
const DefaultRequestTimeout = 15 * time.Second

// TriggerPhase tracks an optimistic sync trigger.
type TriggerPhase int

const (
	TriggerIdle TriggerPhase = iota
	TriggerPending
	TriggerConfirmed
	TriggerRolledBack
)

// TriggerState is the outcome of the last "sync now" intent.
type TriggerState struct {
	Phase   TriggerPhase
	Message string // backend message when confirmed
	Reason  string // backend detail when rolled back
}

// ActionState tracks a foreground write action (save config, test email).
type ActionState struct {
	InFlight bool
	Message  string
	Err      string
}

// Chart is the value-distribution chart input.
type Chart struct {
	Empty   bool
	RunID   int64
	Buckets []metrics.Bucket
	Stats   *models.NormalizationStats
}

type configMsg struct {
	env *models.ConfigEnvelope
	err error
}

type fieldsMsg struct {
	fields []models.CustomField
	err    error
}

type triggerMsg struct {
	result *models.TriggerResult
	err    error
}

type saveConfigMsg struct {
	config *models.SyncConfig
	err    error
}

type emailMsg struct {
	result *models.EmailTestResult
	err    error
}

// Options configures a Controller. Zero values take defaults.
type Options struct {
	Context        context.Context
	Logger         *log.Logger
	Scheduler      Scheduler
	FastInterval   time.Duration
	SlowInterval   time.Duration
	RequestTimeout time.Duration
}

// Controller is the single source of truth for dashboard-visible state.
// All of its methods run on the Bubble Tea update loop.
type Controller struct {
	backend Backend
	call    caller
	logger  *log.Logger

	poller *Poller
	pager  *Pager
	detail *DetailViewer

	config       *models.ConfigEnvelope
	configErr    error
	configLoaded bool

	fields       []models.CustomField
	fieldsErr    error
	fieldsLoaded bool

	trigger      TriggerState
	priorRunning bool

	save  ActionState
	email ActionState
}

func NewController(backend Backend, opts Options) *Controller {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Scheduler == nil {
		opts.Scheduler = TickScheduler{}
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}

	seq := NewSequencer()
	call := caller{ctx: opts.Context, timeout: opts.RequestTimeout}

	return &Controller{
		backend: backend,
		call:    call,
		logger:  opts.Logger,
		poller:  NewPoller(backend, opts.Scheduler, seq, call, opts.Logger, opts.FastInterval, opts.SlowInterval),
		pager:   NewPager(backend, seq, call, opts.Logger),
		detail:  NewDetailViewer(backend, seq, call, opts.Logger),
	}
}

// Init bootstraps configuration, status and the first history page in
// parallel. Each load fails independently.
func (c *Controller) Init() tea.Cmd {
	return tea.Batch(
		c.loadConfig(),
		c.poller.Start(),
		c.pager.SetPage(1),
	)
}

// Update routes a message to the component that issued it.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case pollTickMsg:
		cmd := c.poller.HandleTick(msg)
		if cmd != nil && c.poller.Running() {
			return tea.Batch(cmd, c.pager.Reload())
		}
		return cmd

	case StatusMsg:
		result, cmd := c.poller.HandleStatus(msg)
		if result.Completed {
			if c.trigger.Phase == TriggerConfirmed {
				c.trigger = TriggerState{Phase: TriggerIdle}
			}
			return tea.Batch(cmd, c.pager.Reload())
		}
		return cmd

	case HistoryMsg:
		c.pager.HandleHistory(msg)
		return nil

	case DetailMsg:
		c.detail.HandleDetail(msg)
		return nil

	case configMsg:
		c.configLoaded = true
		if msg.err != nil {
			c.configErr = msg.err
			c.logger.Warn("config load failed", "err", msg.err)
			return nil
		}
		c.config = msg.env
		c.configErr = nil
		return nil

	case fieldsMsg:
		c.fieldsLoaded = true
		if msg.err != nil {
			c.fieldsErr = msg.err
			c.logger.Warn("custom fields load failed", "err", msg.err)
			return nil
		}
		c.fields = msg.fields
		c.fieldsErr = nil
		return nil

	case triggerMsg:
		return c.resolveTrigger(msg)

	case saveConfigMsg:
		c.save.InFlight = false
		if msg.err != nil {
			c.save.Err = api.Detail(msg.err)
			c.logger.Error("save config failed", "err", msg.err)
			return nil
		}
		c.save.Message = "Configuration saved"
		if c.config == nil {
			c.config = &models.ConfigEnvelope{}
		}
		c.config.Config = msg.config
		return c.loadConfig()

	case emailMsg:
		c.email.InFlight = false
		if msg.err != nil {
			c.email.Err = api.Detail(msg.err)
			c.logger.Error("test email failed", "err", msg.err)
			return nil
		}
		c.email.Message = "Test email sent successfully!"
		if msg.result != nil && msg.result.Message != "" {
			c.email.Message = msg.result.Message
		}
		return nil
	}
	return nil
}

// TriggerSync starts a sync. The running belief turns true immediately and
// is rolled back in the same update if the backend rejects the trigger.
// It does nothing while a job is believed running or a trigger is pending.
func (c *Controller) TriggerSync() tea.Cmd {
	if !c.CanTrigger() {
		return nil
	}

	c.priorRunning = c.poller.Running()
	c.trigger = TriggerState{Phase: TriggerPending}
	arm := c.poller.Assume(true, true)

	backend := c.backend
	return tea.Batch(arm, c.call.cmd(func(ctx context.Context) tea.Msg {
		result, err := backend.TriggerSync(ctx)
		return triggerMsg{result: result, err: err}
	}))
}

func (c *Controller) resolveTrigger(msg triggerMsg) tea.Cmd {
	if c.trigger.Phase != TriggerPending {
		return nil
	}
	c.poller.Release()

	if msg.err != nil {
		reason := api.Detail(msg.err)
		c.trigger = TriggerState{Phase: TriggerRolledBack, Reason: reason}
		c.logger.Error("sync trigger failed", "err", msg.err)
		return c.poller.Assume(c.priorRunning, false)
	}

	c.trigger = TriggerState{Phase: TriggerConfirmed}
	if msg.result != nil {
		c.trigger.Message = msg.result.Message
		c.logger.Info("sync triggered", "config_id", msg.result.ConfigID)
	}
	return c.poller.Poll()
}

// CanTrigger reports whether a "sync now" intent would be accepted.
func (c *Controller) CanTrigger() bool {
	return !c.Running() && c.trigger.Phase != TriggerPending
}

// SetPage moves the history view to page n.
func (c *Controller) SetPage(n int) tea.Cmd { return c.pager.SetPage(n) }

// NextPage moves the history view forward one page when enabled.
func (c *Controller) NextPage() tea.Cmd { return c.pager.Next() }

// PrevPage moves the history view back one page when enabled.
func (c *Controller) PrevPage() tea.Cmd { return c.pager.Prev() }

// OpenDetail shows the full record of run id.
func (c *Controller) OpenDetail(id int64) tea.Cmd { return c.detail.Open(id) }

// CloseDetail dismisses the detail view.
func (c *Controller) CloseDetail() { c.detail.Close() }

// Refresh re-reads config, status and the history page in view.
func (c *Controller) Refresh() tea.Cmd {
	return tea.Batch(c.loadConfig(), c.poller.Poll(), c.pager.Reload())
}

// LoadCustomFields fetches the CRM fields the config panel offers.
func (c *Controller) LoadCustomFields() tea.Cmd {
	backend := c.backend
	return c.call.cmd(func(ctx context.Context) tea.Msg {
		fields, err := backend.GetCustomFields(ctx)
		return fieldsMsg{fields: fields, err: err}
	})
}

// SaveConfig stores field as the LTV source. Ignored while a save is in
// flight or when no field is chosen.
func (c *Controller) SaveConfig(field models.CustomField) tea.Cmd {
	if c.save.InFlight || field.Key() == "" {
		return nil
	}
	c.save = ActionState{InFlight: true}

	payload := models.ConfigPayload{LTVFieldKey: field.Key(), LTVFieldName: field.Name}
	backend := c.backend
	return c.call.cmd(func(ctx context.Context) tea.Msg {
		cfg, err := backend.SaveConfig(ctx, payload)
		return saveConfigMsg{config: cfg, err: err}
	})
}

// SendTestEmail asks the backend to send a notification test email.
func (c *Controller) SendTestEmail() tea.Cmd {
	if c.email.InFlight {
		return nil
	}
	c.email = ActionState{InFlight: true}

	backend := c.backend
	return c.call.cmd(func(ctx context.Context) tea.Msg {
		result, err := backend.SendTestEmail(ctx)
		return emailMsg{result: result, err: err}
	})
}

func (c *Controller) loadConfig() tea.Cmd {
	backend := c.backend
	return c.call.cmd(func(ctx context.Context) tea.Msg {
		env, err := backend.GetConfig(ctx)
		return configMsg{env: env, err: err}
	})
}

// Running is true when the local belief or the latest server snapshot says
// a job is running.
func (c *Controller) Running() bool {
	if c.poller.Running() {
		return true
	}
	snap := c.poller.Snapshot()
	return snap != nil && snap.IsRunning
}

// Chart derives the distribution chart from the most recent successful run
// on the history page in view.
func (c *Controller) Chart() Chart {
	run := c.pager.LatestSuccess()
	if run == nil {
		return Chart{Empty: true}
	}
	buckets, ok := metrics.Buckets(run.NormalizationStats)
	if !ok {
		return Chart{Empty: true, RunID: run.ID}
	}
	return Chart{RunID: run.ID, Buckets: buckets, Stats: run.NormalizationStats}
}

// LastRun is the most recent run from the latest status snapshot.
func (c *Controller) LastRun() *models.SyncRun {
	if snap := c.poller.Snapshot(); snap != nil {
		return snap.LastRun
	}
	return nil
}

func (c *Controller) Poller() *Poller              { return c.poller }
func (c *Controller) Pager() *Pager                { return c.pager }
func (c *Controller) Detail() *DetailViewer        { return c.detail }
func (c *Controller) Trigger() TriggerState        { return c.trigger }
func (c *Controller) SaveState() ActionState       { return c.save }
func (c *Controller) EmailState() ActionState      { return c.email }
func (c *Controller) Fields() []models.CustomField { return c.fields }
func (c *Controller) FieldsErr() error             { return c.fieldsErr }
func (c *Controller) FieldsLoaded() bool           { return c.fieldsLoaded }

// Config returns the cached configuration envelope and the last load error.
// Either may be nil; a failed load leaves the rest of the dashboard intact.
func (c *Controller) Config() (*models.ConfigEnvelope, error) {
	return c.config, c.configErr
}

// ConfigLoaded reports whether the config load has resolved either way.
func (c *Controller) ConfigLoaded() bool { return c.configLoaded }
