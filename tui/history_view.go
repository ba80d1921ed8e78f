package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/ltvdash/api"
	"github.com/harperreed/ltvdash/metrics"
	"github.com/harperreed/ltvdash/models"
)

func (m Model) renderDashboardView() string {
	var s strings.Builder

	s.WriteString(m.renderHeader())
	s.WriteString("\n\n")

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderStatusPanel(), "  ", m.renderChart()))
	s.WriteString("\n\n")

	s.WriteString(m.renderHistory())
	s.WriteString("\n")

	s.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return s.String()
}

func newHistoryTable() table.Model {
	columns := []table.Column{
		{Title: "Started", Width: 19},
		{Title: "Status", Width: 10},
		{Title: "Processed", Width: 9},
		{Title: "Matched", Width: 8},
		{Title: "Match %", Width: 7},
		{Title: "Audience", Width: 24},
		{Title: "Duration", Width: 8},
	}
	return table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(8),
	)
}

func historyRows(runs []models.SyncRun) []table.Row {
	rows := make([]table.Row, 0, len(runs))
	for i := range runs {
		run := &runs[i]
		rows = append(rows, table.Row{
			metrics.FormatTimestamp(run.StartedAt),
			statusCell(run.Status),
			fmt.Sprintf("%d", run.ContactsProcessed),
			fmt.Sprintf("%d", run.ContactsMatched),
			metrics.RunMatchRate(run),
			metrics.OrPlaceholder(run.MetaAudienceName),
			metrics.FormatDuration(run.DurationSeconds),
		})
	}
	return rows
}

// statusCell marks failed and warning rows; table cells are plain text.
func statusCell(status string) string {
	switch status {
	case models.RunStatusFailed:
		return "✗ failed"
	case models.RunStatusWarning:
		return "! warning"
	case models.RunStatusRunning:
		return "⟳ running"
	}
	return status
}

func (m Model) renderHistory() string {
	var s strings.Builder
	pager := m.ctrl.Pager()

	title := "Sync History"
	if pager.Total() > 0 {
		title = fmt.Sprintf("Sync History (%d runs)", pager.Total())
	}
	s.WriteString(headerStyle.Render(title))
	s.WriteString("\n\n")

	if err := pager.Err(); err != nil {
		s.WriteString(errorStyle.Render("History unavailable: " + api.Detail(err)))
		s.WriteString("\n")
	}

	switch {
	case !pager.Loaded():
		if pager.Err() == nil {
			s.WriteString(mutedStyle.Render("Loading history..."))
			s.WriteString("\n")
		}
		return s.String()
	case len(pager.Runs()) == 0:
		s.WriteString(mutedStyle.Render("No sync runs yet."))
		s.WriteString("\n")
		return s.String()
	}

	s.WriteString(m.table.View())
	s.WriteString("\n")

	if pager.TotalPages() > 1 {
		s.WriteString(m.renderPagination())
		s.WriteString("\n")
	}
	return s.String()
}

func (m Model) renderPagination() string {
	pager := m.ctrl.Pager()
	prev, next := "‹ prev", "next ›"
	if !pager.HasPrev() {
		prev = mutedStyle.Render(prev)
	}
	if !pager.HasNext() {
		next = mutedStyle.Render(next)
	}
	return fmt.Sprintf("%s  %s  Page %d of %d  %s", prev, m.paginator.View(), pager.Page(), pager.TotalPages(), next)
}

func (m Model) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Sync):
		return m, m.ctrl.TriggerSync()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.ctrl.Refresh()
	case key.Matches(msg, m.keys.Next):
		return m, m.ctrl.NextPage()
	case key.Matches(msg, m.keys.Prev):
		return m, m.ctrl.PrevPage()
	case key.Matches(msg, m.keys.Open):
		run, ok := m.ctrl.Pager().Run(m.table.Cursor())
		if !ok {
			return m, nil
		}
		m.viewMode = ViewDetail
		return m, m.ctrl.OpenDetail(run.ID)
	case key.Matches(msg, m.keys.Config):
		m.viewMode = ViewConfig
		if m.ctrl.FieldsLoaded() && m.ctrl.FieldsErr() == nil {
			return m, nil
		}
		return m, m.ctrl.LoadCustomFields()
	case key.Matches(msg, m.keys.Email):
		m.viewMode = ViewEmail
		return m, nil
	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}
