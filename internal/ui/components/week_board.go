package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ldi/gotask/internal/bucket"
	"github.com/ldi/gotask/pkg/models"
)

var (
	dayBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	todayBoxStyle = dayBoxStyle.BorderForeground(lipgloss.Color("12"))

	dayTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252"))

	separatorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			Padding(1, 1, 0, 1)

	tutorialStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#4a90e2")).
			Padding(0, 1)

	completedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Strikethrough(true)

	cursorStyle = lipgloss.NewStyle().Reverse(true)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Padding(0, 1)
)

// WeekBoard renders bucketed blocks as a column of day boxes.
type WeekBoard struct {
	Blocks   []bucket.Block
	Tutorial *models.Task
	Width    int
	Today    string
	Cursor   string
	Selected map[string]bool
	ShowIDs  bool
	Colors   bool
}

func NewWeekBoard(blocks []bucket.Block, width int) *WeekBoard {
	return &WeekBoard{
		Blocks:   blocks,
		Width:    width,
		Selected: make(map[string]bool),
		Colors:   true,
	}
}

func (b *WeekBoard) View() string {
	var parts []string

	if b.Tutorial != nil {
		parts = append(parts, tutorialStyle.Width(b.Width).Render(b.taskLine(*b.Tutorial)))
	}

	for _, block := range b.Blocks {
		if block.Kind == bucket.KindSeparator {
			parts = append(parts, separatorStyle.Render(block.Title))
			continue
		}
		parts = append(parts, b.renderBlock(block))
	}

	if bucket.Count(b.Blocks) == 0 && b.Tutorial == nil {
		parts = append(parts, emptyStyle.Render("No tasks this week"))
	}
	return strings.Join(parts, "\n")
}

func (b *WeekBoard) renderBlock(block bucket.Block) string {
	style := dayBoxStyle
	if block.DisplayKey == b.Today {
		style = todayBoxStyle
	}

	title := block.Title
	if block.Kind == bucket.KindWeekday && block.ShortDate != "" {
		title = fmt.Sprintf("%s %s", block.Title, block.ShortDate)
	}
	lines := []string{dayTitleStyle.Render(title)}

	innerWidth := max(b.Width-4, 0)
	for _, t := range block.Tasks {
		line := lipgloss.NewStyle().Width(innerWidth).Render(b.taskLine(t))
		lines = append(lines, b.styleTask(t, line))
	}
	return style.Width(b.Width).Render(strings.Join(lines, "\n"))
}

func (b *WeekBoard) taskLine(t models.Task) string {
	var sb strings.Builder
	switch {
	case b.Selected[t.ID]:
		sb.WriteString("[*] ")
	case t.Completed:
		sb.WriteString("[x] ")
	default:
		sb.WriteString("[ ] ")
	}
	if t.Important {
		sb.WriteString("★ ")
	}
	sb.WriteString(t.Text)
	if t.Pinned {
		sb.WriteString(" ^")
	}
	if b.ShowIDs && !t.IsTutorial() {
		sb.WriteString(" (" + t.ID + ")")
	}
	return sb.String()
}

func (b *WeekBoard) styleTask(t models.Task, line string) string {
	if t.ID == b.Cursor {
		return cursorStyle.Render(line)
	}
	if t.Completed {
		return completedStyle.Render(line)
	}
	if !b.Colors {
		return line
	}

	style := lipgloss.NewStyle()
	if t.Color != "" && t.Color != models.DefaultColor {
		style = style.Foreground(lipgloss.Color(t.Color))
	}
	if t.FontWeight == models.FontWeightBold {
		style = style.Bold(true)
	}
	if t.FontStyle == models.FontStyleItalic {
		style = style.Italic(true)
	}
	if t.Highlight && t.HighlightColor != "" {
		style = style.Background(lipgloss.Color(t.HighlightColor))
	}
	return style.Render(line)
}
