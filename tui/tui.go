// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Interactive pipeline board, relance table and prospect detail
package tui

import (
	"context"
	"strconv"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/prospecta/crm"
	"github.com/harperreed/prospecta/models"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewBoard ViewMode = iota
	ViewRelances
	ViewDetail
	ViewLog
	ViewGraph
	ViewConfirmDelete
)

// Model is the main bubbletea model
type Model struct {
	ctx      context.Context
	svc      *crm.Service
	viewMode ViewMode

	// Board state
	columns   []crm.Column
	column    int
	row       int
	relances  []crm.Alert
	relanceRow int

	// Detail state
	selectedID models.RecordID
	detail     *crm.ProspectDetail
	returnTo   ViewMode

	// Log state
	noteInput textinput.Model

	// Graph state
	graphDOT string

	// UI state
	width   int
	height  int
	message string
	err     error
}

// NewModel creates a new TUI model and loads the board.
func NewModel(ctx context.Context, svc *crm.Service) Model {
	input := textinput.New()
	input.Placeholder = "Compte rendu, appel, note..."
	input.CharLimit = 500
	input.Width = 60

	m := Model{
		ctx:       ctx,
		svc:       svc,
		viewMode:  ViewBoard,
		noteInput: input,
		width:     100,
		height:    30,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewBoard:
		return m.renderBoardView()
	case ViewRelances:
		return m.renderRelanceView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewLog:
		return m.renderLogView()
	case ViewGraph:
		return m.renderGraphView()
	case ViewConfirmDelete:
		return m.renderConfirmDeleteView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Typing in the note field must not quit.
	if m.viewMode == ViewLog {
		return m.handleLogKeys(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}

	switch m.viewMode {
	case ViewBoard:
		return m.handleBoardKeys(msg)
	case ViewRelances:
		return m.handleRelanceKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewGraph:
		return m.handleGraphKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	}

	return m, nil
}

// refresh reloads the board and the relance list, keeping the cursor in
// range.
func (m *Model) refresh() {
	cols, err := m.svc.Board(m.ctx)
	if err != nil {
		m.err = err
		return
	}
	alerts, err := m.svc.Alerts(m.ctx)
	if err != nil {
		m.err = err
		return
	}
	m.columns = cols
	m.relances = alerts
	m.err = nil

	if m.column >= len(m.columns) {
		m.column = len(m.columns) - 1
	}
	if m.column < 0 {
		m.column = 0
	}
	m.clampRow()
	if m.relanceRow >= len(m.relances) {
		m.relanceRow = max(len(m.relances)-1, 0)
	}
}

func (m *Model) clampRow() {
	n := len(m.currentColumn().Prospects)
	if m.row >= n {
		m.row = n - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

func (m Model) currentColumn() crm.Column {
	if m.column < 0 || m.column >= len(m.columns) {
		return crm.Column{}
	}
	return m.columns[m.column]
}

func (m Model) selectedProspect() (models.Prospect, bool) {
	col := m.currentColumn()
	if m.row < 0 || m.row >= len(col.Prospects) {
		return models.Prospect{}, false
	}
	return col.Prospects[m.row], true
}

// openDetail loads a prospect and switches to the detail view.
func (m *Model) openDetail(id models.RecordID, from ViewMode) {
	detail, err := m.svc.LoadProspect(m.ctx, id)
	if err != nil {
		m.err = err
		return
	}
	m.selectedID = id
	m.detail = detail
	m.returnTo = from
	m.viewMode = ViewDetail
	m.err = nil
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)

func (m Model) renderStatus() string {
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if m.message != "" {
		return messageStyle.Render(m.message)
	}
	return ""
}

func (m Model) renderTabs() string {
	tabs := []struct {
		name string
		mode ViewMode
	}{{"Pipeline", ViewBoard}, {"Relances", ViewRelances}}

	var rendered []string
	for _, tab := range tabs {
		name := tab.name
		if tab.mode == ViewRelances && len(m.relances) > 0 {
			name = name + " (" + strconv.Itoa(len(m.relances)) + ")"
		}
		if tab.mode == m.viewMode {
			rendered = append(rendered, tabActiveStyle.Render(name))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}
