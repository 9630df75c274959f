package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(20)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	sectionStyle = lipgloss.NewStyle().Bold(true)
)

func (m Model) renderDetailView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("PROSPECT"))
	s.WriteString("\n\n")

	if m.detail == nil {
		s.WriteString("No prospect selected\n")
		s.WriteString(m.renderDetailHelp())
		return s.String()
	}

	p := m.detail.Prospect
	s.WriteString(m.renderField("Company", p.CompanyName))
	s.WriteString(m.renderField("Stage", p.Stage.Label()))
	s.WriteString(m.renderField("Country", p.Country))
	s.WriteString(m.renderField("Volume", p.PotentialVolume))
	s.WriteString(m.renderField("Last action", p.LastActionDate.Format("2006-01-02")))
	s.WriteString(m.renderField("Notes", p.Notes))

	s.WriteString("\n")
	s.WriteString(sectionStyle.Render("CONTACTS"))
	s.WriteString("\n")
	for _, c := range m.detail.Contacts {
		line := "  • " + c.Name
		if c.Role != "" {
			line += " (" + c.Role + ")"
		}
		if c.Email != "" {
			line += " " + c.Email
		}
		s.WriteString(line + "\n")
	}

	s.WriteString("\n")
	s.WriteString(sectionStyle.Render("SAMPLES"))
	s.WriteString("\n")
	for _, sample := range m.detail.Samples {
		sent := "-"
		if sample.DateSent != nil {
			sent = sample.DateSent.Format("2006-01-02")
		}
		s.WriteString(fmt.Sprintf("  • [%s] %s %s\n", sent, sample.Product, sample.Status.Label()))
	}

	s.WriteString("\n")
	s.WriteString(sectionStyle.Render("HISTORY"))
	s.WriteString("\n")
	for _, a := range m.detail.Activities {
		s.WriteString(fmt.Sprintf("  %s [%s] %s\n", a.Type.Icon(), a.Date.Format("2006-01-02"), firstLine(a.Content)))
	}

	s.WriteString("\n")
	if status := m.renderStatus(); status != "" {
		s.WriteString(status)
		s.WriteString("\n")
	}
	s.WriteString(m.renderDetailHelp())

	return s.String()
}

func (m Model) renderField(label, value string) string {
	if value == "" {
		value = "-"
	}
	return fmt.Sprintf("%s %s\n",
		fieldLabelStyle.Render(label+":"),
		fieldValueStyle.Render(value))
}

func (m Model) renderDetailHelp() string {
	help := []string{
		"Esc: Back",
		"n: Log note",
		"d: Delete",
		"g: View graph",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""
	switch msg.String() {
	case "esc":
		m.viewMode = m.returnTo
		m.refresh()
	case "n":
		m.noteInput.SetValue("")
		m.viewMode = ViewLog
		return m, m.noteInput.Focus()
	case "d":
		m.viewMode = ViewConfirmDelete
	case "g":
		m.generateGraph()
	}

	return m, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
