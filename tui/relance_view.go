package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) renderRelanceView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("PROSPECTA"))
	s.WriteString("\n\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	if len(m.relances) == 0 {
		s.WriteString(fmt.Sprintf("No sample waiting more than %d days", m.svc.RelanceThreshold()))
	} else {
		s.WriteString(m.renderRelanceTable())
	}
	s.WriteString("\n")
	if status := m.renderStatus(); status != "" {
		s.WriteString(status)
		s.WriteString("\n")
	}
	s.WriteString(m.renderRelanceHelp())

	return s.String()
}

func (m Model) renderRelanceTable() string {
	columns := []table.Column{
		{Title: "Company", Width: 28},
		{Title: "Product", Width: 24},
		{Title: "Sent", Width: 12},
		{Title: "Days", Width: 6},
	}

	rows := make([]table.Row, 0, len(m.relances))
	for _, a := range m.relances {
		company := "-"
		if a.Prospect != nil {
			company = a.Prospect.CompanyName
		}
		sent := "-"
		if a.Sample.DateSent != nil {
			sent = a.Sample.DateSent.Format("2006-01-02")
		}
		rows = append(rows, table.Row{company, a.Sample.Product, sent, fmt.Sprintf("%d", a.DaysElapsed)})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-10, 3)),
	)
	if m.relanceRow < len(rows) {
		t.SetCursor(m.relanceRow)
	}
	return t.View()
}

func (m Model) renderRelanceHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"Enter: Prospect",
		"Tab: Pipeline",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleRelanceKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""
	switch msg.String() {
	case "up", "k":
		if m.relanceRow > 0 {
			m.relanceRow--
		}
	case "down", "j":
		if m.relanceRow < len(m.relances)-1 {
			m.relanceRow++
		}
	case "enter":
		if m.relanceRow < len(m.relances) {
			m.openDetail(m.relances[m.relanceRow].Sample.ProspectID, ViewRelances)
		}
	case "tab":
		m.viewMode = ViewBoard
	case "r":
		m.refresh()
	}
	return m, nil
}
