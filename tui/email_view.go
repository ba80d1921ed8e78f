package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/ltvdash/api"
)

func (m Model) renderEmailView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("EMAIL NOTIFICATIONS"))
	s.WriteString("\n\n")

	from, to := "Not configured", "Not configured"
	env, cfgErr := m.ctrl.Config()
	if env != nil {
		if env.SMTPFrom != "" {
			from = env.SMTPFrom
		}
		if env.SMTPTo != "" {
			to = env.SMTPTo
		}
	}
	s.WriteString(renderField("From", from))
	s.WriteString(renderField("To", to))
	if cfgErr != nil {
		s.WriteString(errorStyle.Render("Config unavailable: " + api.Detail(cfgErr)))
		s.WriteString("\n")
	}
	s.WriteString("\n")

	state := m.ctrl.EmailState()
	switch {
	case state.InFlight:
		s.WriteString(m.spinner.View() + " Sending...")
	case state.Err != "":
		s.WriteString(errorStyle.Render("✗ " + state.Err))
	case state.Message != "":
		s.WriteString(successStyle.Render("✓ " + state.Message))
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("t: Send test email • Esc: Back • q: Quit"))
	return s.String()
}

func (m Model) handleEmailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.viewMode = ViewDashboard
	case key.Matches(msg, m.keys.Send):
		return m, m.ctrl.SendTestEmail()
	}
	return m, nil
}
