// ABOUTME: TUI header and status panel for the sync job
// ABOUTME: Shows the running badge, trigger outcome and the last run summary
package tui

import (
	"fmt"
	"strings"

	"github.com/harperreed/ltvdash/api"
	"github.com/harperreed/ltvdash/dashboard"
	"github.com/harperreed/ltvdash/metrics"
	"github.com/harperreed/ltvdash/models"
)

var statusLabelStyle = fieldLabelStyle.Width(18)

func (m Model) renderHeader() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("LTV Audience Sync"))
	s.WriteString("\n")
	s.WriteString(m.renderBadge())

	if trig := m.renderTrigger(); trig != "" {
		s.WriteString("\n")
		s.WriteString(trig)
	}
	return s.String()
}

// renderBadge shows "Running" whenever the local belief or the server says
// so, otherwise the last run's outcome.
func (m Model) renderBadge() string {
	if m.ctrl.Running() {
		return m.spinner.View() + runningStyle.Render(" Running")
	}

	last := m.ctrl.LastRun()
	if last == nil {
		if err := m.ctrl.Poller().LastErr(); err != nil && m.ctrl.Poller().Snapshot() == nil {
			return errorStyle.Render("Status unavailable: " + api.Detail(err))
		}
		return mutedStyle.Render("No syncs yet")
	}

	badge := statusBadge(last.Status)
	if last.CompletedAt != nil && !last.CompletedAt.IsZero() {
		badge += mutedStyle.Render(fmt.Sprintf("  • last completed %s", metrics.Since(last.CompletedAt.Time, m.now())))
	}
	return badge
}

func (m Model) renderTrigger() string {
	t := m.ctrl.Trigger()
	switch t.Phase {
	case dashboard.TriggerPending:
		return runningStyle.Render("Starting sync...")
	case dashboard.TriggerConfirmed:
		msg := t.Message
		if msg == "" {
			msg = "Sync triggered"
		}
		return successStyle.Render("✓ " + msg)
	case dashboard.TriggerRolledBack:
		return errorStyle.Render("✗ " + t.Reason)
	}
	return ""
}

func (m Model) renderStatusPanel() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Last Sync"))
	s.WriteString("\n\n")

	env, cfgErr := m.ctrl.Config()
	account := metrics.Placeholder
	if env != nil && env.MetaAdAccountID != "" {
		account = env.MetaAdAccountID
	}
	s.WriteString(statusLine("Ad account", account))
	if cfgErr != nil {
		s.WriteString(errorStyle.Render("Config unavailable: " + api.Detail(cfgErr)))
		s.WriteString("\n")
	}

	last := m.ctrl.LastRun()
	if last == nil {
		s.WriteString(mutedStyle.Render("No sync has run yet."))
		return panelStyle.Render(s.String())
	}

	s.WriteString(statusLine("Audience", metrics.OrPlaceholder(last.MetaAudienceName)))
	s.WriteString(statusLine("Lookalike", metrics.OrPlaceholder(last.MetaLookalikeName)))
	s.WriteString(statusLine("Contacts", metrics.FormatCount(last)))
	s.WriteString(statusLine("Match rate", matchRateCell(last)))
	if last.ErrorMessage != nil && *last.ErrorMessage != "" {
		s.WriteString(errorStyle.Render(*last.ErrorMessage))
	}
	return panelStyle.Render(strings.TrimRight(s.String(), "\n"))
}

func statusLine(label, value string) string {
	return statusLabelStyle.Render(label) + fieldValueStyle.Render(value) + "\n"
}

func statusBadge(status string) string {
	switch status {
	case models.RunStatusSuccess:
		return successStyle.Render("✓ success")
	case models.RunStatusWarning:
		return warningStyle.Render("! warning")
	case models.RunStatusFailed:
		return errorStyle.Render("✗ failed")
	case models.RunStatusRunning:
		return runningStyle.Render("⟳ running")
	}
	return mutedStyle.Render(status)
}

func matchRateCell(run *models.SyncRun) string {
	rate := metrics.RunMatchRate(run)
	if rate == metrics.Placeholder {
		return rate
	}
	return rate + "%"
}
