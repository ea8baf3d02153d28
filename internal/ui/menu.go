package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ldi/gotask/internal/bucket"
	"github.com/ldi/gotask/internal/week"
	"github.com/ldi/gotask/pkg/models"
)

var (
	logoStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	summaryStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).PaddingLeft(2)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(2)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("12")).Bold(true)
)

const logo = `
                  __             __
   ____ _____    / /_____ ______/ /__
  / __ '/ __ \  / __/ __ '/ ___/ //_/
 / /_/ / /_/ / / /_/ /_/ (__  ) ,<
 \__, /\____/  \__/\__,_/____/_/|_|
/____/
`

type menuItem struct {
	command string
	help    string
}

var menuItems = []menuItem{
	{"board", "open the interactive week board"},
	{"list", "print this week's tasks"},
	{"status", "show sync state and storage paths"},
	{"web", "serve the board over HTTP"},
	{"mcp", "serve tools over stdio"},
	{"init", "create the board in this directory"},
}

// MenuSummary is the one-line board overview shown above the choices.
type MenuSummary struct {
	Ready    bool
	Today    string
	DueToday int
	Open     int
	UserID   string
}

// SummarizeTasks counts the open tasks for today and for the whole list.
// The onboarding task is not counted.
func SummarizeTasks(list []models.Task, now time.Time, loc week.Locale, userID string) MenuSummary {
	list = models.WithoutTutorial(list)
	w := week.Compute(now, loc)
	s := MenuSummary{Ready: true, UserID: userID}
	for _, t := range list {
		if !t.Completed {
			s.Open++
		}
	}
	if day, ok := w.Find(now); ok {
		s.Today = day.Name + " " + day.ShortDate
		for _, t := range bucket.Group(list, w, loc)[day.DisplayKey] {
			if !t.Completed {
				s.DueToday++
			}
		}
	}
	return s
}

func (s MenuSummary) String() string {
	if !s.Ready {
		return "No board here yet. Choose init to create one."
	}
	parts := []string{fmt.Sprintf("%d due today", s.DueToday), fmt.Sprintf("%d open", s.Open)}
	if s.Today != "" {
		parts = append([]string{s.Today}, parts...)
	}
	if s.UserID != "" {
		parts = append(parts, "signed in as "+s.UserID)
	} else {
		parts = append(parts, "offline")
	}
	return strings.Join(parts, " · ")
}

type MenuModel struct {
	summary  MenuSummary
	cursor   int
	selected string
	quitting bool
}

// NewMenuModel starts on the board, or on init when there is no board yet.
func NewMenuModel(summary MenuSummary) MenuModel {
	m := MenuModel{summary: summary}
	if !summary.Ready {
		m.cursor = len(menuItems) - 1
	}
	return m
}

func (m MenuModel) Init() tea.Cmd {
	return nil
}

func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch k := key.String(); k {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(menuItems)-1 {
			m.cursor++
		}

	case "enter":
		m.selected = menuItems[m.cursor].command
		return m, tea.Quit

	default:
		// digits pick a choice directly
		if len(k) == 1 && k[0] >= '1' && int(k[0]-'1') < len(menuItems) {
			m.cursor = int(k[0] - '1')
			m.selected = menuItems[m.cursor].command
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder
	s.WriteString(logoStyle.Render(logo))
	s.WriteString("\n")
	s.WriteString(summaryStyle.Render(m.summary.String()))
	s.WriteString("\n\n")

	for i, item := range menuItems {
		line := fmt.Sprintf("%d %-7s %s", i+1, item.command, item.help)
		if m.cursor == i {
			s.WriteString(selectedItemStyle.Render("> " + line))
		} else {
			s.WriteString(itemStyle.Render("  " + line))
		}
		s.WriteString("\n")
	}

	s.WriteString("\n(j/k or arrows to move, enter or 1-6 to pick, q to quit)\n")
	return s.String()
}

func (m MenuModel) Selected() string {
	return m.selected
}

func RunMenu(summary MenuSummary) (string, error) {
	finalModel, err := tea.NewProgram(NewMenuModel(summary)).Run()
	if err != nil {
		return "", err
	}
	return finalModel.(MenuModel).Selected(), nil
}
