// ABOUTME: Tests for the dashboard TUI
// ABOUTME: Drives the model with key presses against a scripted backend and checks rendered output
package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/ltvdash/api"
	"github.com/harperreed/ltvdash/dashboard"
	"github.com/harperreed/ltvdash/metrics"
	"github.com/harperreed/ltvdash/models"
)

// heldScheduler never fires; the tests poll explicitly.
type heldScheduler struct{}

func (heldScheduler) After(time.Duration, tea.Msg) tea.Cmd { return nil }

type stubBackend struct {
	status     *models.SyncStatus
	history    map[int]*models.HistoryPage
	runs       map[int64]*models.SyncRunDetail
	config     *models.ConfigEnvelope
	configErr  error
	fields     []models.CustomField
	saved      []models.ConfigPayload
	triggerErr error
	emails     int
}

func (b *stubBackend) GetStatus(context.Context) (*models.SyncStatus, error) {
	if b.status == nil {
		return &models.SyncStatus{}, nil
	}
	return b.status, nil
}

func (b *stubBackend) GetHistory(_ context.Context, page int) (*models.HistoryPage, error) {
	if p, ok := b.history[page]; ok {
		return p, nil
	}
	return &models.HistoryPage{Page: page, PerPage: 20}, nil
}

func (b *stubBackend) GetRun(_ context.Context, id int64) (*models.SyncRunDetail, error) {
	if d, ok := b.runs[id]; ok {
		return d, nil
	}
	return nil, &api.Error{StatusCode: 404, Detail: "Sync run not found"}
}

func (b *stubBackend) GetCustomFields(context.Context) ([]models.CustomField, error) {
	return b.fields, nil
}

func (b *stubBackend) GetConfig(context.Context) (*models.ConfigEnvelope, error) {
	if b.configErr != nil {
		return nil, b.configErr
	}
	if b.config == nil {
		return &models.ConfigEnvelope{}, nil
	}
	return b.config, nil
}

func (b *stubBackend) SaveConfig(_ context.Context, p models.ConfigPayload) (*models.SyncConfig, error) {
	b.saved = append(b.saved, p)
	cfg := &models.SyncConfig{ID: 1, LTVFieldKey: p.LTVFieldKey, LTVFieldName: p.LTVFieldName}
	b.config = &models.ConfigEnvelope{Config: cfg}
	return cfg, nil
}

func (b *stubBackend) TriggerSync(context.Context) (*models.TriggerResult, error) {
	if b.triggerErr != nil {
		return nil, b.triggerErr
	}
	return &models.TriggerResult{Message: "Sync triggered", ConfigID: 1}, nil
}

func (b *stubBackend) SendTestEmail(context.Context) (*models.EmailTestResult, error) {
	b.emails++
	return &models.EmailTestResult{Success: true}, nil
}

func newTestModel(t *testing.T, b *stubBackend) Model {
	t.Helper()
	ctrl := dashboard.NewController(b, dashboard.Options{Scheduler: heldScheduler{}})
	m := NewModel(ctrl)
	m.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return drive(t, m, ctrl.Init())
}

// drive runs cmd and feeds every resulting message back into the model,
// skipping spinner animation and quit.
func drive(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case nil, spinner.TickMsg, tea.QuitMsg:
		return m
	case tea.BatchMsg:
		for _, c := range msg {
			m = drive(t, m, c)
		}
		return m
	default:
		updated, next := m.Update(msg)
		return drive(t, updated.(Model), next)
	}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, cmd := m.Update(msg)
		m = drive(t, updated.(Model), cmd)
	}
	return m
}

func threePages() map[int]*models.HistoryPage {
	name := "LTV Audience"
	dur := 95.0
	out := make(map[int]*models.HistoryPage)
	for p := 1; p <= 3; p++ {
		out[p] = &models.HistoryPage{
			Page: p, PerPage: 20, TotalPages: 3, Total: 45,
			Runs: []models.SyncRun{
				{ID: int64(p*10 + 1), Status: models.RunStatusFailed, ContactsProcessed: 10},
				{
					ID: int64(p * 10), Status: models.RunStatusSuccess,
					ContactsProcessed: 200, ContactsMatched: 150,
					MetaAudienceName: &name, DurationSeconds: &dur,
					NormalizationStats: &models.NormalizationStats{
						MinLTV: 1, MaxLTV: 900, MedianLTV: 50, MeanLTV: 80.5, Count: 200,
						Distribution: []int{100, 50, 20, 10, 5, 5, 4, 3, 2, 1},
					},
				},
			},
		}
	}
	return out
}

func TestView_EmptyBackend(t *testing.T) {
	m := newTestModel(t, &stubBackend{})
	out := m.View()

	assert.Contains(t, out, "LTV Audience Sync")
	assert.Contains(t, out, "No syncs yet")
	assert.Contains(t, out, "No sync runs yet.")
	assert.Contains(t, out, "No successful sync yet.")
	assert.NotContains(t, out, "Page ")
}

func TestView_HistoryAndChart(t *testing.T) {
	m := newTestModel(t, &stubBackend{history: threePages()})
	out := m.View()

	assert.Contains(t, out, "Sync History (45 runs)")
	assert.Contains(t, out, "✗ failed")
	assert.Contains(t, out, "75.0")
	assert.Contains(t, out, "1m 35s")
	assert.Contains(t, out, "Page 1 of 3")
	assert.Contains(t, out, "90-100")
	assert.Contains(t, out, "$80.50")
}

func TestView_NegativeBucketShowsEmptyChart(t *testing.T) {
	pages := threePages()
	pages[1].Runs[1].NormalizationStats.Distribution = []int{6, -1, 0, 0, 0, 0, 0, 0, 0, 0}
	m := newTestModel(t, &stubBackend{history: pages})

	var out string
	require.NotPanics(t, func() { out = m.View() })
	assert.Contains(t, out, "No successful sync yet.")
	assert.NotContains(t, out, "90-100")
}

func TestRenderBars_ClampsToWidth(t *testing.T) {
	buckets := []metrics.Bucket{
		{Label: "0-10", Count: 6},
		{Label: "10-20", Count: -1},
		{Label: "20-30", Count: 0},
	}

	var out string
	require.NotPanics(t, func() { out = renderBars(buckets, 10) })
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, 10, strings.Count(lines[0], "█"))
	assert.Zero(t, strings.Count(lines[1], "█"))
	assert.True(t, strings.HasSuffix(lines[1], " -1"))
}

func TestView_SinglePageHidesPagination(t *testing.T) {
	b := &stubBackend{history: map[int]*models.HistoryPage{
		1: {Page: 1, PerPage: 20, TotalPages: 1, Total: 1, Runs: []models.SyncRun{{ID: 1, Status: models.RunStatusSuccess}}},
	}}
	m := newTestModel(t, b)
	assert.NotContains(t, m.View(), "Page 1 of 1")
}

func TestKeys_Pagination(t *testing.T) {
	m := newTestModel(t, &stubBackend{history: threePages()})

	m = press(t, m, "n")
	assert.Equal(t, 2, m.ctrl.Pager().Page())
	assert.Contains(t, m.View(), "Page 2 of 3")

	m = press(t, m, "n", "n")
	assert.Equal(t, 3, m.ctrl.Pager().Page())

	m = press(t, m, "p")
	assert.Equal(t, 2, m.ctrl.Pager().Page())
}

func TestKeys_TriggerRollbackShowsDetail(t *testing.T) {
	b := &stubBackend{triggerErr: &api.Error{StatusCode: 409, Detail: "A sync is already running"}}
	m := newTestModel(t, b)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	m = updated.(Model)
	assert.Contains(t, m.View(), "Running")
	assert.Contains(t, m.View(), "Starting sync...")

	m = drive(t, m, cmd)
	out := m.View()
	assert.Contains(t, out, "A sync is already running")
	assert.NotContains(t, out, "Starting sync...")
	assert.False(t, m.ctrl.Running())
}

func TestKeys_TriggerConfirmed(t *testing.T) {
	b := &stubBackend{}
	m := newTestModel(t, b)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	id := int64(2)
	b.status = &models.SyncStatus{IsRunning: true, RunningSyncID: &id}
	m = drive(t, updated.(Model), cmd)

	assert.Contains(t, m.View(), "Sync triggered")
	assert.True(t, m.ctrl.Running())
}

func TestKeys_DetailOpenAndClose(t *testing.T) {
	pages := threePages()
	email := "ada@example.com"
	first := "Ada"
	b := &stubBackend{
		history: pages,
		runs: map[int64]*models.SyncRunDetail{
			10: {
				SyncRun: pages[1].Runs[1],
				ContactSamples: []models.ContactSample{
					{ContactID: "c1", Email: &email, FirstName: &first, RawLTV: 1234.5, NormalizedValue: 97},
				},
			},
		},
	}
	m := newTestModel(t, b)

	m = press(t, m, "down", "enter")
	require.Equal(t, ViewDetail, m.viewMode)
	out := m.View()
	assert.Contains(t, out, "SYNC RUN #10")
	assert.Contains(t, out, "ada@example.com")
	assert.Contains(t, out, "$1234.50")
	assert.Contains(t, out, "$900.00")

	m = press(t, m, "esc")
	assert.Equal(t, ViewDashboard, m.viewMode)
	assert.False(t, m.ctrl.Detail().IsOpen())
}

func TestKeys_DetailNotFound(t *testing.T) {
	m := newTestModel(t, &stubBackend{history: threePages()})
	m = press(t, m, "enter")
	assert.Contains(t, m.View(), "Sync run not found")
}

func TestKeys_ConfigPickAndSave(t *testing.T) {
	b := &stubBackend{fields: []models.CustomField{
		{ID: "f1", Name: "Lifetime Value", FieldKey: "contact.lifetime_value"},
		{ID: "f2", Name: "Total Spend"},
	}}
	m := newTestModel(t, b)

	m = press(t, m, "c")
	require.Equal(t, ViewConfig, m.viewMode)
	assert.Contains(t, m.View(), "No LTV field configured yet.")
	assert.Contains(t, m.View(), "Lifetime Value")

	m = press(t, m, "down", "enter")
	require.Len(t, b.saved, 1)
	assert.Equal(t, "f2", b.saved[0].LTVFieldKey)
	assert.Equal(t, "Total Spend", b.saved[0].LTVFieldName)
	assert.Contains(t, m.View(), "Configuration saved")

	m = press(t, m, "esc")
	assert.Equal(t, ViewDashboard, m.viewMode)
}

func TestKeys_Email(t *testing.T) {
	b := &stubBackend{config: &models.ConfigEnvelope{SMTPFrom: "bot@example.com"}}
	m := newTestModel(t, b)

	m = press(t, m, "e")
	out := m.View()
	assert.Contains(t, out, "bot@example.com")
	assert.Contains(t, out, "Not configured")

	m = press(t, m, "t")
	assert.Equal(t, 1, b.emails)
	assert.Contains(t, m.View(), "Test email sent successfully!")
}

func TestView_ConfigFailureIsolated(t *testing.T) {
	b := &stubBackend{
		configErr: &api.Error{StatusCode: 500, Detail: "Internal Server Error"},
		history:   threePages(),
	}
	m := newTestModel(t, b)
	out := m.View()

	assert.Contains(t, out, "Config unavailable: Internal Server Error")
	assert.Contains(t, out, "Sync History")
	assert.True(t, strings.Contains(out, "Page 1 of 3"))
}

func TestKeys_Quit(t *testing.T) {
	m := newTestModel(t, &stubBackend{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
