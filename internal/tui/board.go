package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/taskboard/internal/board"
	"github.com/sadopc/taskboard/internal/schedule"
	"github.com/sadopc/taskboard/internal/session"
	"github.com/sadopc/taskboard/internal/task"
)

// cardHeight is the rendered height of a collapsed card, used to decide
// how many fit in a column.
const cardHeight = 3

type boardModel struct {
	width  int
	height int

	columns []board.Column
	col     int
	row     int
	target  int // drop column while a card is picked up
}

func newBoardModel() boardModel {
	return boardModel{columns: board.Columns(nil)}
}

func (b *boardModel) setSize(w, h int) {
	b.width = w
	b.height = h
}

func (b *boardModel) setTasks(tasks []task.Task) {
	b.columns = board.Columns(tasks)
	b.clamp()
}

func (b *boardModel) clamp() {
	b.col = max(0, min(b.col, len(b.columns)-1))
	b.target = max(0, min(b.target, len(b.columns)-1))
	n := len(b.columns[b.col].Tasks)
	b.row = max(0, min(b.row, n-1))
}

// selected is the card under the cursor.
func (b boardModel) selected() (task.Task, bool) {
	tasks := b.columns[b.col].Tasks
	if b.row < 0 || b.row >= len(tasks) {
		return task.Task{}, false
	}
	return tasks[b.row], true
}

func (b boardModel) targetStatus() task.Status {
	return b.columns[b.target].Status
}

// pickUp points the drop target at the card's own column.
func (b boardModel) pickUp() boardModel {
	b.target = b.col
	return b
}

// update moves the cursor, or the drop target while dragging.
func (b boardModel) update(msg tea.KeyMsg, dragging bool) boardModel {
	last := len(b.columns) - 1
	switch {
	case key.Matches(msg, keys.Left):
		if dragging {
			b.target = max(0, b.target-1)
		} else if b.col > 0 {
			b.col--
			b.row = 0
		}
	case key.Matches(msg, keys.Right):
		if dragging {
			b.target = min(last, b.target+1)
		} else if b.col < last {
			b.col++
			b.row = 0
		}
	case key.Matches(msg, keys.Up):
		if !dragging && b.row > 0 {
			b.row--
		}
	case key.Matches(msg, keys.Down):
		if !dragging && b.row < len(b.columns[b.col].Tasks)-1 {
			b.row++
		}
	}
	return b
}

func (b boardModel) view(now time.Time, loc *time.Location, sess session.State, draggedID int64, dragging bool) string {
	if b.width < 40 {
		return "Terminal too small"
	}

	colWidth := b.width/len(b.columns) - 2
	visible := max(1, (b.height-4)/cardHeight)

	var cols []string
	for i, c := range b.columns {
		header := statusStyle(c.Status).Bold(true).Render(c.Status.Label()) +
			mutedStyle.Render(fmt.Sprintf(" (%d)", len(c.Tasks)))

		rows := []string{header, ""}
		if len(c.Tasks) == 0 {
			rows = append(rows, mutedStyle.Render("—"))
		}

		start := 0
		if i == b.col && b.row >= visible {
			start = b.row - visible + 1
		}
		end := min(len(c.Tasks), start+visible)
		if start > 0 {
			rows = append(rows, mutedStyle.Render(fmt.Sprintf("↑ %d more", start)))
		}
		for j := start; j < end; j++ {
			t := c.Tasks[j]
			sel := i == b.col && j == b.row
			rows = append(rows, renderCard(t, now, loc, colWidth-3, sel, sess.IsExpanded(t.ID), dragging && t.ID == draggedID))
		}
		if end < len(c.Tasks) {
			rows = append(rows, mutedStyle.Render(fmt.Sprintf("↓ %d more", len(c.Tasks)-end)))
		}

		style := columnStyle
		if dragging && i == b.target {
			style = dropTargetStyle
		}
		cols = append(cols, style.Width(colWidth).Render(strings.Join(rows, "\n")))
	}

	out := lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	if dragging {
		hint := fmt.Sprintf("  Moving #%d → %s   ←/→: target  space/enter: drop  esc: cancel",
			draggedID, b.targetStatus().Label())
		out = lipgloss.JoinVertical(lipgloss.Left, out, highlightStyle.Render(hint))
	}
	return out
}

// renderCard draws one task. The left border carries the urgency tier,
// recomputed against now on every render.
func renderCard(t task.Task, now time.Time, loc *time.Location, w int, selected, expanded, dragged bool) string {
	w = max(8, w)
	u := task.UrgencyOf(t, now)

	cursor := "  "
	style := normalItemStyle
	if selected {
		cursor = "> "
		style = selectedItemStyle
	}
	if dragged {
		cursor = "⇄ "
	}
	title := style.Render(cursor + truncate(t.Text, w-2))

	sd, st := schedule.SplitTimestamp(t.StartAt, loc)
	ed, et := schedule.SplitTimestamp(t.EndAt, loc)
	when := mutedStyle.Render(truncate(fmt.Sprintf("%s %s → %s %s", sd[5:], st, ed[5:], et), w))

	lines := []string{title, when}
	switch u {
	case task.UrgencyBreached:
		lines = append(lines, lipgloss.NewStyle().Foreground(urgencyColor(u)).Render("overdue"))
	case task.UrgencyCritical, task.UrgencyWarning:
		left := t.EndAt.Sub(now).Round(time.Minute)
		lines = append(lines, lipgloss.NewStyle().Foreground(urgencyColor(u)).Render(left.String()+" left"))
	}
	if expanded && t.Description != "" {
		lines = append(lines, lipgloss.NewStyle().Width(w).Foreground(colorFg).Render(t.Description))
	}

	return cardStyle.BorderForeground(urgencyColor(u)).Render(strings.Join(lines, "\n"))
}
