// ABOUTME: Delete confirmation view for TUI
// ABOUTME: Deletes a prospect and everything it owns after confirmation
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(1, 2).
			Width(60).
			Align(lipgloss.Center)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	confirmButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("9")).
				Padding(0, 2).
				MarginRight(2)

	cancelButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("8")).
				Padding(0, 2)
)

func (m Model) renderConfirmDeleteView() string {
	name := "-"
	var contacts, samples, activities int
	if m.detail != nil {
		name = m.detail.Prospect.CompanyName
		contacts = len(m.detail.Contacts)
		samples = len(m.detail.Samples)
		activities = len(m.detail.Activities)
	}

	title := warningStyle.Render("⚠  DELETE CONFIRMATION  ⚠")
	message := "Are you sure you want to delete this prospect?"
	entityInfo := fmt.Sprintf("\nPROSPECT: %s\n", name)
	owned := fmt.Sprintf("%d contact(s), %d sample(s) and %d activity(ies) go with it.", contacts, samples, activities)
	warning := "\nThis action cannot be undone!"

	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		confirmButtonStyle.Render("Yes, Delete (y)"),
		cancelButtonStyle.Render("Cancel (n/esc)"),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		message,
		entityInfo,
		owned,
		warning,
		"",
		buttons,
	)

	box := confirmBoxStyle.Render(content)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		box,
	)
}

func (m Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if err := m.svc.DeleteProspect(m.ctx, m.selectedID); err != nil {
			m.err = err
			m.viewMode = ViewDetail
			return m, nil
		}
		name := ""
		if m.detail != nil {
			name = m.detail.Prospect.CompanyName
		}
		m.detail = nil
		m.selectedID = 0
		m.viewMode = ViewBoard
		m.refresh()
		m.message = "✓ Deleted " + name
	case "n", "N", "esc":
		m.viewMode = ViewDetail
	}

	return m, nil
}
