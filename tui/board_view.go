package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/prospecta/models"
)

var (
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	activeColumnStyle = columnStyle.
				BorderForeground(lipgloss.Color("170"))

	selectedCardStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("62"))

	overdueCardStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("214"))
)

func (m Model) renderBoardView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("PROSPECTA"))
	s.WriteString("\n\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")
	s.WriteString(m.renderColumns())
	s.WriteString("\n")
	if status := m.renderStatus(); status != "" {
		s.WriteString(status)
		s.WriteString("\n")
	}
	s.WriteString(m.renderBoardHelp())

	return s.String()
}

func (m Model) renderColumns() string {
	if len(m.columns) == 0 {
		return "No stages"
	}

	overdue := map[models.RecordID]bool{}
	for _, a := range m.relances {
		overdue[a.Sample.ProspectID] = true
	}

	width := m.width/len(m.columns) - 4
	if width < 10 {
		width = 10
	}

	rendered := make([]string, 0, len(m.columns))
	for i, col := range m.columns {
		var b strings.Builder
		b.WriteString(lipgloss.NewStyle().Bold(true).Render(truncate(col.Stage.Label(), width)))
		b.WriteString(fmt.Sprintf("\n%d\n", len(col.Prospects)))
		for j, p := range col.Prospects {
			name := truncate(p.CompanyName, width)
			switch {
			case i == m.column && j == m.row:
				name = selectedCardStyle.Render(name)
			case overdue[p.ID]:
				name = overdueCardStyle.Render(name)
			}
			b.WriteString(name)
			b.WriteString("\n")
		}

		style := columnStyle
		if i == m.column {
			style = activeColumnStyle
		}
		rendered = append(rendered, style.Width(width).Render(b.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderBoardHelp() string {
	help := []string{
		"←/→: Stage",
		"↑/↓: Prospect",
		"Enter: Details",
		">/<: Advance/Retreat",
		"x: Lost",
		"Tab: Relances",
		"g: Graph",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleBoardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""
	switch msg.String() {
	case "left", "h":
		if m.column > 0 {
			m.column--
			m.clampRow()
		}
	case "right", "l":
		if m.column < len(m.columns)-1 {
			m.column++
			m.clampRow()
		}
	case "up", "k":
		if m.row > 0 {
			m.row--
		}
	case "down", "j":
		if m.row < len(m.currentColumn().Prospects)-1 {
			m.row++
		}
	case ">", "]":
		m.moveSelected(true)
	case "<", "[":
		m.moveSelected(false)
	case "x":
		if p, ok := m.selectedProspect(); ok {
			if err := m.svc.SetStage(m.ctx, p.ID, models.StageLost); err != nil {
				m.err = err
			} else {
				m.message = p.CompanyName + " → " + models.StageLost.Label()
				m.refresh()
			}
		}
	case "enter":
		if p, ok := m.selectedProspect(); ok {
			m.openDetail(p.ID, ViewBoard)
		}
	case "tab":
		m.viewMode = ViewRelances
	case "g":
		m.generateGraph()
	case "r":
		m.refresh()
	}
	return m, nil
}

// moveSelected advances or retreats the selected prospect and keeps the
// cursor on it in its new column.
func (m *Model) moveSelected(forward bool) {
	p, ok := m.selectedProspect()
	if !ok {
		return
	}
	move := m.svc.Retreat
	if forward {
		move = m.svc.Advance
	}
	stage, err := move(m.ctx, p.ID)
	if err != nil {
		m.err = err
		return
	}
	if stage == p.Stage {
		m.message = p.CompanyName + " stays at " + stage.Label()
		return
	}
	m.message = p.CompanyName + " → " + stage.Label()
	m.refresh()
	m.focus(p.ID)
}

// focus puts the cursor on the prospect with id, wherever it is.
func (m *Model) focus(id models.RecordID) {
	for i, col := range m.columns {
		for j, p := range col.Prospects {
			if p.ID == id {
				m.column, m.row = i, j
				return
			}
		}
	}
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
