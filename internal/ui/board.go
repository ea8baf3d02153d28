package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ldi/gotask/internal/persist"
	"github.com/ldi/gotask/internal/planner"
	"github.com/ldi/gotask/internal/ui/components"
	"github.com/ldi/gotask/pkg/models"
)

// SelectionSession is the selection session used by the terminal board.
const SelectionSession = "tui"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Actions is what the board needs from the planner.
type Actions interface {
	Board() planner.Board
	AddTask(ctx context.Context, in planner.NewTask) (models.Task, error)
	ToggleCompleted(ctx context.Context, id string) (models.Task, error)
	ToggleImportant(ctx context.Context, id string) (models.Task, error)
	TogglePin(ctx context.Context, id string) (models.Task, error)
	Duplicate(ctx context.Context, id string) (models.Task, error)
	Delete(ctx context.Context, ids ...string) (int, error)
	ToggleSelected(session, id string) (bool, error)
	Selected(session string) []string
	DeleteSelected(ctx context.Context, session string) (int, error)
	DismissTutorial(ctx context.Context) error
	Status() persist.Status
}

var _ Actions = (*planner.Planner)(nil)

type BoardModel struct {
	ctx     context.Context
	actions Actions

	board  planner.Board
	order  []string
	cursor int

	viewport viewport.Model
	input    textinput.Model
	adding   bool
	width    int
	err      error
	quitting bool
}

func NewBoardModel(ctx context.Context, actions Actions) BoardModel {
	ti := textinput.New()
	ti.Placeholder = "New task"
	ti.CharLimit = 500

	m := BoardModel{
		ctx:      ctx,
		actions:  actions,
		viewport: viewport.New(80, 20),
		input:    ti,
		width:    80,
	}
	m.refresh()
	return m
}

// refresh reloads the board and rebuilds the cursor order.
func (m *BoardModel) refresh() {
	m.board = m.actions.Board()
	m.order = nil
	for _, b := range m.board.Blocks {
		for _, t := range b.Tasks {
			m.order = append(m.order, t.ID)
		}
	}
	if m.cursor >= len(m.order) {
		m.cursor = max(len(m.order)-1, 0)
	}
	m.viewport.SetContent(m.renderBoard())
}

func (m BoardModel) current() string {
	if len(m.order) == 0 {
		return ""
	}
	return m.order[m.cursor]
}

func (m BoardModel) renderBoard() string {
	b := components.NewWeekBoard(m.board.Blocks, max(m.width-2, 20))
	b.Tutorial = m.board.Tutorial
	b.Cursor = m.current()
	b.Today = m.board.Today
	for _, id := range m.actions.Selected(SelectionSession) {
		b.Selected[id] = true
	}
	return b.View()
}

func (m BoardModel) Init() tea.Cmd {
	return nil
}

func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-4, 1)
		m.viewport.SetContent(m.renderBoard())
		return m, nil

	case tea.KeyMsg:
		if m.adding {
			return m.updateInput(msg)
		}
		return m.updateBoard(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m BoardModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.adding = false
		m.input.Blur()
		m.input.SetValue("")
		return m, nil
	case tea.KeyEnter:
		_, m.err = m.actions.AddTask(m.ctx, planner.NewTask{Text: m.input.Value()})
		m.adding = false
		m.input.Blur()
		m.input.SetValue("")
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m BoardModel) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	id := m.current()

	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.order)-1 {
			m.cursor++
		}

	case "a":
		m.adding = true
		return m, m.input.Focus()

	case " ", "enter":
		if id != "" {
			_, m.err = m.actions.ToggleCompleted(m.ctx, id)
		}

	case "i":
		if id != "" {
			_, m.err = m.actions.ToggleImportant(m.ctx, id)
		}

	case "p":
		if id != "" {
			_, m.err = m.actions.TogglePin(m.ctx, id)
		}

	case "c":
		if id != "" {
			_, m.err = m.actions.Duplicate(m.ctx, id)
		}

	case "x":
		if id != "" {
			_, m.err = m.actions.Delete(m.ctx, id)
		}

	case "s":
		if id != "" {
			_, m.err = m.actions.ToggleSelected(SelectionSession, id)
		}

	case "X":
		_, m.err = m.actions.DeleteSelected(m.ctx, SelectionSession)

	case "t":
		m.err = m.actions.DismissTutorial(m.ctx)

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	m.refresh()
	return m, nil
}

func (m BoardModel) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("gotask"))
	s.WriteString(" ")
	s.WriteString(components.SyncStatus{Status: m.actions.Status()}.View())
	s.WriteString("\n")
	s.WriteString(m.viewport.View())
	s.WriteString("\n")

	switch {
	case m.adding:
		s.WriteString(m.input.View())
	case m.err != nil:
		s.WriteString(errStyle.Render(fmt.Sprintf("error: %v", m.err)))
	default:
		s.WriteString(helpStyle.Render("j/k move | space done | a add | i important | p pin | c copy | x delete | s select | X delete selected | t hide tutorial | q quit"))
	}
	s.WriteString("\n")
	return s.String()
}

// Err returns the error of the last action, if any.
func (m BoardModel) Err() error {
	return m.err
}

func RunBoard(ctx context.Context, actions Actions) error {
	p := tea.NewProgram(NewBoardModel(ctx, actions), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
