package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/taskboard/internal/mutation"
	"github.com/sadopc/taskboard/internal/schedule"
	"github.com/sadopc/taskboard/internal/task"
)

// viewState represents the currently active view.
type viewState int

const (
	viewBoard viewState = iota
	viewTable
	viewDashboard
)

var viewNames = []string{"Board", "Table", "Dashboard"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type refreshedMsg struct {
	err error
}

// committedMsg reports the outcome of one repository call.
type committedMsg struct {
	action mutation.Action
	err    error
}

type exportDoneMsg struct {
	path string
}

// --- Commands ---

func refreshCmd(o *mutation.Orchestrator) tea.Cmd {
	return func() tea.Msg {
		return refreshedMsg{err: o.Refresh(context.Background())}
	}
}

func commitCmd(o *mutation.Orchestrator, a mutation.Action) tea.Cmd {
	return func() tea.Msg {
		return committedMsg{action: a, err: o.Commit(context.Background(), a)}
	}
}

// --- Helpers ---

// commitStatus is the status bar text for a finished commit.
func commitStatus(a mutation.Action, err error) statusMsg {
	switch {
	case errors.Is(err, task.ErrNotFound):
		return statusMsg{text: "Task no longer exists", isError: true}
	case err != nil:
		return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
	}
	switch a.Kind {
	case mutation.KindAdd:
		return statusMsg{text: fmt.Sprintf("Added %q", a.Draft.Text)}
	case mutation.KindEdit:
		return statusMsg{text: fmt.Sprintf("Saved %q", a.Draft.Text)}
	case mutation.KindDelete:
		return statusMsg{text: fmt.Sprintf("Deleted task #%d", a.ID)}
	default:
		return statusMsg{text: fmt.Sprintf("Moved task #%d to %s", a.ID, a.Status.Label())}
	}
}

// formatRange renders a task's window in loc as "2006-01-02 15:04 → 15:04",
// repeating the date only when the end falls on another day.
func formatRange(t task.Task, loc *time.Location) string {
	sd, st := schedule.SplitTimestamp(t.StartAt, loc)
	ed, et := schedule.SplitTimestamp(t.EndAt, loc)
	if sd == ed {
		return fmt.Sprintf("%s %s → %s", sd, st, et)
	}
	return fmt.Sprintf("%s %s → %s %s", sd, st, ed, et)
}

func truncate(s string, w int) string {
	r := []rune(s)
	if w <= 0 {
		return ""
	}
	if len(r) <= w {
		return s
	}
	if w == 1 {
		return "…"
	}
	return string(r[:w-1]) + "…"
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
