package dashboard

import (
	"context"
	"fmt"
	"io"
	"sort"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/harperreed/ltvdash/api"
	"github.com/harperreed/ltvdash/models"
)

// virtualClock is a Scheduler whose timers only fire when the test advances
// time. Timer commands are held rather than returned.
type virtualClock struct {
	now    time.Duration
	timers []virtualTimer
	armed  []time.Duration
}

type virtualTimer struct {
	at  time.Duration
	msg tea.Msg
}

func (c *virtualClock) After(d time.Duration, msg tea.Msg) tea.Cmd {
	c.armed = append(c.armed, d)
	c.timers = append(c.timers, virtualTimer{at: c.now + d, msg: msg})
	return nil
}

// due removes and returns every timer that has fired by now, earliest first.
func (c *virtualClock) due() []tea.Msg {
	sort.SliceStable(c.timers, func(i, j int) bool { return c.timers[i].at < c.timers[j].at })
	var fired []tea.Msg
	var pending []virtualTimer
	for _, t := range c.timers {
		if t.at <= c.now {
			fired = append(fired, t.msg)
		} else {
			pending = append(pending, t)
		}
	}
	c.timers = pending
	return fired
}

// fakeBackend scripts backend responses and records calls against the
// virtual clock.
type fakeBackend struct {
	clock *virtualClock

	statuses   []*models.SyncStatus
	statusErrs []error
	statusAt   []time.Duration

	history     func(page int) (*models.HistoryPage, error)
	historyReqs []int

	runs map[int64]*models.SyncRunDetail

	config    *models.ConfigEnvelope
	configErr error

	fields    []models.CustomField
	fieldsErr error

	saved   []models.ConfigPayload
	saveErr error

	triggers   int
	triggerErr error

	emailErr error
}

func newFakeBackend(clock *virtualClock) *fakeBackend {
	return &fakeBackend{
		clock: clock,
		runs:  make(map[int64]*models.SyncRunDetail),
		history: func(page int) (*models.HistoryPage, error) {
			return &models.HistoryPage{Page: page, PerPage: 20}, nil
		},
		config: &models.ConfigEnvelope{MetaAdAccountID: "act_123"},
	}
}

func (f *fakeBackend) GetStatus(ctx context.Context) (*models.SyncStatus, error) {
	f.statusAt = append(f.statusAt, f.clock.now)
	i := len(f.statusAt) - 1
	if i < len(f.statusErrs) && f.statusErrs[i] != nil {
		return nil, f.statusErrs[i]
	}
	if len(f.statuses) == 0 {
		return &models.SyncStatus{}, nil
	}
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	return f.statuses[i], nil
}

func (f *fakeBackend) GetHistory(ctx context.Context, page int) (*models.HistoryPage, error) {
	f.historyReqs = append(f.historyReqs, page)
	return f.history(page)
}

func (f *fakeBackend) GetRun(ctx context.Context, id int64) (*models.SyncRunDetail, error) {
	if d, ok := f.runs[id]; ok {
		return d, nil
	}
	return nil, &api.Error{StatusCode: 404, Detail: "Sync run not found"}
}

func (f *fakeBackend) GetCustomFields(ctx context.Context) ([]models.CustomField, error) {
	return f.fields, f.fieldsErr
}

func (f *fakeBackend) GetConfig(ctx context.Context) (*models.ConfigEnvelope, error) {
	if f.configErr != nil {
		return nil, f.configErr
	}
	return f.config, nil
}

func (f *fakeBackend) SaveConfig(ctx context.Context, payload models.ConfigPayload) (*models.SyncConfig, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.saved = append(f.saved, payload)
	cfg := &models.SyncConfig{ID: 1, LTVFieldKey: payload.LTVFieldKey, LTVFieldName: payload.LTVFieldName, SyncEnabled: true}
	f.config = &models.ConfigEnvelope{Config: cfg, MetaAdAccountID: "act_123"}
	return cfg, nil
}

func (f *fakeBackend) TriggerSync(ctx context.Context) (*models.TriggerResult, error) {
	f.triggers++
	if f.triggerErr != nil {
		return nil, f.triggerErr
	}
	return &models.TriggerResult{Message: "Sync triggered", ConfigID: 1}, nil
}

func (f *fakeBackend) SendTestEmail(ctx context.Context) (*models.EmailTestResult, error) {
	if f.emailErr != nil {
		return nil, f.emailErr
	}
	return &models.EmailTestResult{Success: true, Message: "Test email sent successfully"}, nil
}

// harness drives a Controller the way the Bubble Tea runtime would, but
// synchronously.
type harness struct {
	t       *testing.T
	clock   *virtualClock
	backend *fakeBackend
	ctrl    *Controller
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clock := &virtualClock{}
	backend := newFakeBackend(clock)
	ctrl := NewController(backend, Options{
		Logger:    log.New(io.Discard),
		Scheduler: clock,
	})
	return &harness{t: t, clock: clock, backend: backend, ctrl: ctrl}
}

// run executes cmd and every command it transitively produces.
func (h *harness) run(cmd tea.Cmd) {
	h.t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			h.run(c)
		}
		return
	}
	if msg == nil {
		return
	}
	h.run(h.ctrl.Update(msg))
}

// advance moves virtual time forward by d, firing due timers in order.
func (h *harness) advance(d time.Duration) {
	h.t.Helper()
	target := h.clock.now + d
	for {
		next := target
		for _, t := range h.clock.timers {
			if t.at < next && t.at > h.clock.now {
				next = t.at
			}
		}
		h.clock.now = next
		for _, msg := range h.clock.due() {
			h.run(h.ctrl.Update(msg))
		}
		if h.clock.now >= target {
			return
		}
	}
}

func running(id int64) *models.SyncStatus {
	return &models.SyncStatus{IsRunning: true, RunningSyncID: &id, LastRun: &models.SyncRun{ID: id, Status: models.RunStatusRunning}}
}

func idle(lastID int64, status string) *models.SyncStatus {
	return &models.SyncStatus{LastRun: &models.SyncRun{ID: lastID, Status: status}}
}

func successRun(id int64, dist []int) models.SyncRun {
	stats := &models.NormalizationStats{Distribution: dist}
	stats.Count = stats.DistributionSum()
	return models.SyncRun{ID: id, Status: models.RunStatusSuccess, ContactsProcessed: stats.Count, NormalizationStats: stats}
}

func pageOf(page, totalPages int, runs ...models.SyncRun) *models.HistoryPage {
	return &models.HistoryPage{Runs: runs, Page: page, PerPage: 20, TotalPages: totalPages, Total: totalPages * 20}
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	return context.Background()
}

func errBoom(what string) error {
	return fmt.Errorf("%s: connection refused", what)
}
