package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/prospecta/crm"
	"github.com/harperreed/prospecta/models"
)

func (m Model) renderLogView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("LOG NOTE"))
	s.WriteString("\n\n")
	if m.detail != nil {
		s.WriteString(m.renderField("Company", m.detail.Prospect.CompanyName))
		s.WriteString("\n")
	}
	s.WriteString(m.noteInput.View())
	s.WriteString("\n")
	if status := m.renderStatus(); status != "" {
		s.WriteString(status)
		s.WriteString("\n")
	}
	s.WriteString(helpStyle.Render("Enter: Save • Esc: Cancel"))

	return s.String()
}

func (m Model) handleLogKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.noteInput.Blur()
		m.viewMode = ViewDetail
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEnter:
		return m.saveNote()
	}

	var cmd tea.Cmd
	m.noteInput, cmd = m.noteInput.Update(msg)
	return m, cmd
}

// saveNote logs the typed text as a Note dated now. The last-action date
// moves with it.
func (m Model) saveNote() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.noteInput.Value())
	if text == "" {
		m.err = nil
		m.message = "Nothing to log"
		return m, nil
	}

	_, err := m.svc.LogActivity(m.ctx, m.selectedID, models.ActivityNote, text, m.svc.Now())
	if pf, ok := crm.AsPartialFailure(err); ok {
		err = pf.Resume(m.ctx)
	}
	if err != nil {
		m.err = err
		return m, nil
	}

	m.noteInput.Blur()
	m.noteInput.SetValue("")
	m.openDetail(m.selectedID, m.returnTo)
	m.message = "✓ Note logged"
	return m, nil
}
