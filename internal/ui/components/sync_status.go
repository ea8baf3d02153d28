package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ldi/gotask/internal/persist"
)

var (
	statusLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusOKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	statusErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// SyncStatus renders the persistence state as a single status line.
type SyncStatus struct {
	Status persist.Status
}

func (s SyncStatus) View() string {
	st := s.Status
	parts := []string{statusLabelStyle.Render("state:") + " " + string(st.State)}

	switch {
	case st.UserID == "":
		parts = append(parts, statusLabelStyle.Render("offline"))
	case !st.Remote:
		parts = append(parts, fmt.Sprintf("user %s (no remote)", st.UserID))
	case st.Syncing:
		parts = append(parts, fmt.Sprintf("user %s syncing...", st.UserID))
	default:
		parts = append(parts, statusOKStyle.Render(fmt.Sprintf("user %s synced", st.UserID)))
	}

	parts = append(parts, fmt.Sprintf("%d task(s)", st.Tasks))
	if st.Remote {
		parts = append(parts, fmt.Sprintf("%d push(es)", st.Pushes))
	}
	if st.LastPushError != "" {
		parts = append(parts, statusErrStyle.Render("last push failed: "+st.LastPushError))
	}
	return strings.Join(parts, " | ")
}
