package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/taskboard/internal/schedule"
	"github.com/sadopc/taskboard/internal/task"
)

type tableModel struct {
	width  int
	height int

	tasks []task.Task
	table table.Model
}

func newTableModel() tableModel {
	t := table.New(
		table.WithColumns(tableColumns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorSubtle).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(colorPrimary).
		Background(lipgloss.NoColor{}).
		Bold(true)
	t.SetStyles(s)

	return tableModel{table: t}
}

// tableColumns splits w between the columns; the title takes the slack.
func tableColumns(w int) []table.Column {
	const id, status, date = 5, 12, 17
	title := max(12, w-id-status-2*date-10)
	return []table.Column{
		{Title: "#", Width: id},
		{Title: "Title", Width: title},
		{Title: "Status", Width: status},
		{Title: "Start", Width: date},
		{Title: "End", Width: date},
	}
}

func (m *tableModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.table.SetColumns(tableColumns(w - 4))
	m.table.SetWidth(w - 4)
	m.table.SetHeight(max(3, h-4))
}

func (m *tableModel) setTasks(tasks []task.Task, loc *time.Location) {
	m.tasks = tasks
	rows := make([]table.Row, 0, len(tasks))
	for _, t := range tasks {
		sd, st := schedule.SplitTimestamp(t.StartAt, loc)
		ed, et := schedule.SplitTimestamp(t.EndAt, loc)
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", t.ID),
			t.Text,
			t.Status.Label(),
			sd + " " + st,
			ed + " " + et,
		})
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

func (m tableModel) selected() (task.Task, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.tasks) {
		return task.Task{}, false
	}
	return m.tasks[c], true
}

func (m tableModel) update(msg tea.Msg) (tableModel, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m tableModel) view() string {
	w := m.width - 4
	title := titleStyle.Render(fmt.Sprintf("All tasks (%d)", len(m.tasks)))
	if len(m.tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, m.table.View())
}
