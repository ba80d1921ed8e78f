// ABOUTME: TUI config panel for choosing the LTV source field
// ABOUTME: Lists CRM custom fields and saves the operator's pick to the backend
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/ltvdash/api"
	"github.com/harperreed/ltvdash/models"
)

// fieldItem adapts a custom field to the list widget.
type fieldItem struct {
	field models.CustomField
}

func (i fieldItem) Title() string       { return i.field.Name }
func (i fieldItem) Description() string { return i.field.Key() }
func (i fieldItem) FilterValue() string { return i.field.Name + " " + i.field.Key() }

func (m Model) renderConfigView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("LTV FIELD"))
	s.WriteString("\n\n")

	env, cfgErr := m.ctrl.Config()
	switch {
	case cfgErr != nil:
		s.WriteString(errorStyle.Render("Config unavailable: " + api.Detail(cfgErr)))
	case env == nil || env.Config == nil:
		s.WriteString(mutedStyle.Render("No LTV field configured yet."))
	default:
		s.WriteString(renderField("Current field", env.Config.LTVFieldName))
		s.WriteString(renderField("Field key", env.Config.LTVFieldKey))
	}
	if env != nil && env.LocationName != "" {
		s.WriteString("\n")
		s.WriteString(renderField("Location", env.LocationName))
	}
	s.WriteString("\n")

	switch {
	case !m.ctrl.FieldsLoaded():
		s.WriteString(m.spinner.View() + " Loading custom fields...")
	case m.ctrl.FieldsErr() != nil:
		s.WriteString(errorStyle.Render("Could not load custom fields: " + api.Detail(m.ctrl.FieldsErr())))
	case len(m.ctrl.Fields()) == 0:
		s.WriteString(mutedStyle.Render("The CRM has no custom fields."))
	default:
		s.WriteString(m.fieldList.View())
	}
	s.WriteString("\n")

	save := m.ctrl.SaveState()
	switch {
	case save.InFlight:
		s.WriteString(runningStyle.Render("Saving..."))
	case save.Err != "":
		s.WriteString(errorStyle.Render("✗ " + save.Err))
	case save.Message != "":
		s.WriteString(successStyle.Render("✓ " + save.Message))
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: Select field • /: Filter • Enter: Save • r: Reload fields • Esc: Back"))
	return s.String()
}

// selectedField is the field under the list cursor, if any.
func (m Model) selectedField() (models.CustomField, bool) {
	item, ok := m.fieldList.SelectedItem().(fieldItem)
	if !ok {
		return models.CustomField{}, false
	}
	return item.field, true
}

func (m Model) handleConfigKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The filter prompt owns every key while it is open.
	if m.fieldList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.fieldList, cmd = m.fieldList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		if m.fieldList.FilterState() == list.FilterApplied {
			var cmd tea.Cmd
			m.fieldList, cmd = m.fieldList.Update(msg)
			return m, cmd
		}
		m.viewMode = ViewDashboard
		return m, nil
	case key.Matches(msg, m.keys.Save):
		field, ok := m.selectedField()
		if !ok {
			return m, nil
		}
		return m, m.ctrl.SaveConfig(field)
	case key.Matches(msg, m.keys.Refresh):
		return m, m.ctrl.LoadCustomFields()
	case msg.String() == "q":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.fieldList, cmd = m.fieldList.Update(msg)
	return m, cmd
}
