package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/ltvdash/api"
	"github.com/harperreed/ltvdash/dashboard"
	"github.com/harperreed/ltvdash/metrics"
	"github.com/harperreed/ltvdash/models"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(20)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

func (m Model) renderDetailView() string {
	var s strings.Builder
	d := m.ctrl.Detail()

	s.WriteString(titleStyle.Render(fmt.Sprintf("SYNC RUN #%d", d.RunID())))
	s.WriteString("\n\n")

	switch d.State() {
	case dashboard.DetailLoading:
		s.WriteString(m.spinner.View() + " Loading run...")
	case dashboard.DetailFailed:
		s.WriteString(errorStyle.Render("Could not load run: " + api.Detail(d.Err())))
	case dashboard.DetailLoaded:
		s.WriteString(renderRunDetail(d.Detail()))
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Esc: Back • q: Quit"))
	return s.String()
}

func renderRunDetail(run *models.SyncRunDetail) string {
	var s strings.Builder

	s.WriteString(renderField("Status", statusBadge(run.Status)))
	s.WriteString(renderField("Started", metrics.FormatTimestamp(run.StartedAt)))
	s.WriteString(renderField("Completed", metrics.FormatTimestamp(run.CompletedAt)))
	s.WriteString(renderField("Duration", metrics.FormatDuration(run.DurationSeconds)))
	s.WriteString(renderField("Contacts processed", fmt.Sprintf("%d", run.ContactsProcessed)))
	s.WriteString(renderField("Contacts matched", fmt.Sprintf("%d (%s)", run.ContactsMatched, matchRateCell(&run.SyncRun))))
	s.WriteString(renderField("Audience", nameAndID(run.MetaAudienceName, run.MetaAudienceID)))
	s.WriteString(renderField("Lookalike", nameAndID(run.MetaLookalikeName, run.MetaLookalikeID)))

	if run.ErrorMessage != nil && *run.ErrorMessage != "" {
		s.WriteString(renderField("Error", errorStyle.Render(*run.ErrorMessage)))
	}

	if stats := run.NormalizationStats; stats != nil {
		s.WriteString("\n")
		s.WriteString(headerStyle.Render("Normalization"))
		s.WriteString("\n\n")
		s.WriteString(renderField("Min LTV", metrics.FormatMoney(stats.MinLTV)))
		s.WriteString(renderField("Max LTV", metrics.FormatMoney(stats.MaxLTV)))
		s.WriteString(renderField("Median LTV", metrics.FormatMoney(stats.MedianLTV)))
		s.WriteString(renderField("Mean LTV", metrics.FormatMoney(stats.MeanLTV)))
		s.WriteString(renderField("Count", fmt.Sprintf("%d", stats.Count)))
	}

	if len(run.ContactSamples) > 0 {
		s.WriteString("\n")
		s.WriteString(headerStyle.Render("Sample Contacts"))
		s.WriteString("\n\n")
		s.WriteString(renderSamples(run.ContactSamples))
	}

	return s.String()
}

func renderSamples(samples []models.ContactSample) string {
	var s strings.Builder
	fmt.Fprintf(&s, "%-24s %-30s %12s %6s\n", "Name", "Email", "Raw LTV", "Value")
	for _, c := range samples {
		name := strings.TrimSpace(models.StringValue(c.FirstName) + " " + models.StringValue(c.LastName))
		if name == "" {
			name = metrics.Placeholder
		}
		fmt.Fprintf(&s, "%-24s %-30s %12s %6d\n",
			truncate(name, 24), truncate(metrics.OrPlaceholder(c.Email), 30), metrics.FormatMoney(c.RawLTV), c.NormalizedValue)
	}
	return s.String()
}

func renderField(label, value string) string {
	return fieldLabelStyle.Render(label) + fieldValueStyle.Render(value) + "\n"
}

func nameAndID(name, id *string) string {
	if id == nil || *id == "" {
		return metrics.OrPlaceholder(name)
	}
	return fmt.Sprintf("%s (%s)", metrics.OrPlaceholder(name), *id)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.ctrl.CloseDetail()
		m.viewMode = ViewDashboard
	}
	return m, nil
}
