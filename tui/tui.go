// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Renders the sync dashboard controller and maps keys to operator intents
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/ltvdash/dashboard"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewDashboard ViewMode = iota
	ViewDetail
	ViewConfig
	ViewEmail
)

// Model is the main bubbletea model. All dashboard state lives in the
// controller; the model only holds widgets and view selection.
type Model struct {
	ctrl     *dashboard.Controller
	viewMode ViewMode

	keys      keyMap
	help      help.Model
	table     table.Model
	paginator paginator.Model
	spinner   spinner.Model
	fieldList list.Model

	width  int
	height int
	now    func() time.Time
}

// NewModel creates a new TUI model around ctrl.
func NewModel(ctrl *dashboard.Controller) Model {
	pg := paginator.New()
	pg.Type = paginator.Dots
	pg.ActiveDot = pageActiveStyle.Render("•")
	pg.InactiveDot = pageInactiveStyle.Render("•")

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = runningStyle

	fields := list.New(nil, list.NewDefaultDelegate(), 60, 14)
	fields.Title = "CRM custom fields"
	fields.SetShowHelp(false)

	m := Model{
		ctrl:      ctrl,
		viewMode:  ViewDashboard,
		keys:      newKeyMap(),
		help:      help.New(),
		table:     newHistoryTable(),
		paginator: pg,
		spinner:   sp,
		fieldList: fields,
		width:     100,
		height:    32,
		now:       time.Now,
	}
	m.syncWidgets()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.ctrl.Init(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.fieldList.SetSize(min(msg.Width-4, 80), max(msg.Height-14, 6))
		m.table.SetHeight(max(msg.Height-24, 5))
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	cmd := m.ctrl.Update(msg)
	widgetCmd := m.syncWidgets()
	return m, tea.Batch(cmd, widgetCmd)
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewDetail:
		return m.renderDetailView()
	case ViewConfig:
		return m.renderConfigView()
	case ViewEmail:
		return m.renderEmailView()
	}
	return m.renderDashboardView()
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Delegate to view-specific handlers
	switch m.viewMode {
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewConfig:
		return m.handleConfigKeys(msg)
	case ViewEmail:
		return m.handleEmailKeys(msg)
	}
	return m.handleDashboardKeys(msg)
}

// syncWidgets copies controller state into the widgets that keep their own
// copy of it (table rows, page dots, field list).
func (m *Model) syncWidgets() tea.Cmd {
	pager := m.ctrl.Pager()

	m.table.SetRows(historyRows(pager.Runs()))
	if c := m.table.Cursor(); c >= len(pager.Runs()) && len(pager.Runs()) > 0 {
		m.table.SetCursor(len(pager.Runs()) - 1)
	}

	if pager.TotalPages() > 0 {
		m.paginator.TotalPages = pager.TotalPages()
		m.paginator.Page = max(pager.Page()-1, 0)
	}

	fields := m.ctrl.Fields()
	if len(m.fieldList.Items()) != len(fields) {
		items := make([]list.Item, len(fields))
		for i, f := range fields {
			items[i] = fieldItem{field: f}
		}
		return m.fieldList.SetItems(items)
	}
	return nil
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Underline(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	runningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	pageActiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	pageInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("238"))
)
