package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/sadopc/taskboard/internal/board"
	"github.com/sadopc/taskboard/internal/export"
	"github.com/sadopc/taskboard/internal/logging"
	"github.com/sadopc/taskboard/internal/metrics"
	"github.com/sadopc/taskboard/internal/mutation"
	"github.com/sadopc/taskboard/internal/session"
	"github.com/sadopc/taskboard/internal/task"
)

// Options configures NewApp. Only Orchestrator is required.
type Options struct {
	Orchestrator *mutation.Orchestrator
	Location     *time.Location
	Window       metrics.Window
	Logger       *log.Logger
	Now          func() time.Time
}

// App is the root Bubble Tea model.
type App struct {
	orch *mutation.Orchestrator
	drag *board.Controller
	sess session.State
	loc  *time.Location
	log  *log.Logger
	now  time.Time

	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	dropping      bool

	board     boardModel
	table     tableModel
	dashboard dashboardModel
	form      formModel

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(opts Options) App {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Window == "" {
		opts.Window = metrics.DefaultWindow
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	h := help.New()
	h.ShowAll = false

	return App{
		orch:       opts.Orchestrator,
		drag:       board.NewController(opts.Orchestrator),
		loc:        opts.Location,
		log:        opts.Logger,
		now:        opts.Now(),
		activeView: viewBoard,
		board:      newBoardModel(),
		table:      newTableModel(),
		dashboard:  newDashboardModel(opts.Window),
		form:       newFormModel(),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		refreshCmd(a.orch),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.board.setSize(a.width, contentHeight)
		a.table.setSize(a.width, contentHeight)
		a.dashboard.setSize(a.width, contentHeight)
		a.form.setSize(a.width)
		a.dashboard.load(a.orch.Tasks(), a.now, a.loc)
		return a, nil

	case tickMsg:
		// Urgency and overdue counts move with the clock.
		a.now = time.Time(msg)
		if a.activeView == viewDashboard {
			a.dashboard.load(a.orch.Tasks(), a.now, a.loc)
		}
		return a, tickCmd()

	case refreshedMsg:
		if msg.err != nil {
			a.setStatus(statusMsg{text: fmt.Sprintf("Refresh failed: %v", msg.err), isError: true})
		}
		a.sync()
		return a, nil

	case committedMsg:
		a.dropping = false
		a.setStatus(commitStatus(msg.action, msg.err))
		a.sync()
		return a, nil

	case statusMsg:
		a.setStatus(msg)
		return a, nil

	case exportDoneMsg:
		a.setStatus(statusMsg{text: "Exported to " + msg.path})
		a.exportPicking = false
		return a, nil

	case formSubmittedMsg:
		return a.submitForm(msg.draft), nil

	case formCancelledMsg:
		a.sess.CloseSheet()
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	// Anything else (cursor blinks, huh internals) goes to whoever has focus.
	if a.form.active {
		var cmd tea.Cmd
		a.form, cmd = a.form.update(msg, a.now, a.loc)
		return a, cmd
	}
	if a.activeView == viewTable {
		var cmd tea.Cmd
		a.table, cmd = a.table.update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	// A pending action blocks everything until it is answered.
	if _, ok := a.orch.Pending(); ok {
		return a.updateConfirm(msg)
	}

	if a.form.active {
		var cmd tea.Cmd
		a.form, cmd = a.form.update(msg, a.now, a.loc)
		return a, cmd
	}

	if a.sess.DescOpen {
		if key.Matches(msg, keys.Back) || key.Matches(msg, keys.Enter) {
			a.sess.CloseDesc()
		}
		return a, nil
	}

	if a.exportPicking {
		return a.updateExportPicker(msg)
	}

	if _, ok := a.drag.Dragging(); ok {
		return a.updateDrag(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, keys.Help):
		a.showHelp = !a.showHelp
		a.help.ShowAll = a.showHelp
		return a, nil
	case key.Matches(msg, keys.Tab1):
		a.activeView = viewBoard
		return a, nil
	case key.Matches(msg, keys.Tab2):
		a.activeView = viewTable
		return a, nil
	case key.Matches(msg, keys.Tab3):
		a.activeView = viewDashboard
		a.dashboard.load(a.orch.Tasks(), a.now, a.loc)
		return a, nil
	case key.Matches(msg, keys.Tab):
		a.activeView = (a.activeView + 1) % viewState(len(viewNames))
		if a.activeView == viewDashboard {
			a.dashboard.load(a.orch.Tasks(), a.now, a.loc)
		}
		return a, nil
	case key.Matches(msg, keys.Refresh):
		a.setStatus(statusMsg{text: "Refreshing…"})
		return a, refreshCmd(a.orch)
	case key.Matches(msg, keys.Export):
		a.exportPicking = true
		a.exportCursor = 0
		return a, nil
	case key.Matches(msg, keys.New):
		a.sess.OpenSheet()
		var cmd tea.Cmd
		a.form, cmd = a.form.openAdd(a.now, a.loc)
		return a, cmd
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.activeView == viewDashboard {
		if key.Matches(msg, keys.Window) {
			a.dashboard.cycleWindow()
			a.dashboard.load(a.orch.Tasks(), a.now, a.loc)
		}
		return a, nil
	}

	t, ok := a.selectedTask()
	switch {
	case ok && key.Matches(msg, keys.Edit):
		a.sess.SetEditTarget(t)
		var cmd tea.Cmd
		a.form, cmd = a.form.openEdit(t, a.loc)
		return a, cmd
	case ok && key.Matches(msg, keys.Delete):
		return a.intend(mutation.Delete(t.ID)), nil
	case ok && key.Matches(msg, keys.Enter):
		a.sess.OpenDesc(t)
		return a, nil
	case ok && key.Matches(msg, keys.Expand):
		a.sess.ToggleExpanded(t.ID)
		return a, nil
	}

	if a.activeView == viewTable {
		var cmd tea.Cmd
		a.table, cmd = a.table.update(msg)
		return a, cmd
	}

	if ok && key.Matches(msg, keys.Drag) {
		a.drag.DragStart(t.ID)
		a.board = a.board.pickUp()
		return a, nil
	}
	a.board = a.board.update(msg, false)
	return a, nil
}

func (a App) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Confirm):
		act, err := a.orch.Release()
		if err != nil {
			a.setStatus(statusMsg{text: err.Error(), isError: true})
			return a, nil
		}
		a.setStatus(statusMsg{text: "Saving…"})
		return a, commitCmd(a.orch, act)
	case key.Matches(msg, keys.Deny):
		a.orch.Cancel()
		a.setStatus(statusMsg{text: "Cancelled"})
	}
	return a, nil
}

func (a App) updateDrag(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.dropping {
		return a, nil
	}
	switch {
	case key.Matches(msg, keys.Back):
		a.drag.Cancel()
		a.setStatus(statusMsg{text: "Move cancelled"})
		return a, nil
	case key.Matches(msg, keys.Drag), key.Matches(msg, keys.Enter):
		return a.drop()
	}
	a.board = a.board.update(msg, true)
	return a, nil
}

// drop sends the status patch for the dragged card to the target column.
func (a App) drop() (tea.Model, tea.Cmd) {
	id, ok := a.drag.Dragging()
	if !ok {
		return a, nil
	}
	s := a.board.targetStatus()
	drag := a.drag
	a.dropping = true
	return a, func() tea.Msg {
		err := drag.Drop(context.Background(), s)
		return committedMsg{action: mutation.MoveTo(id, s), err: err}
	}
}

func (a App) submitForm(d task.Draft) App {
	act := mutation.Add(d)
	if a.sess.EditTarget != nil {
		act = mutation.Edit(a.sess.EditTarget.ID, d)
	}
	a.sess.CloseSheet()
	return a.intend(act)
}

func (a App) intend(act mutation.Action) App {
	if err := a.orch.Intend(act); err != nil {
		a.setStatus(statusMsg{text: err.Error(), isError: true})
	}
	return a
}

func (a App) selectedTask() (task.Task, bool) {
	switch a.activeView {
	case viewBoard:
		return a.board.selected()
	case viewTable:
		return a.table.selected()
	}
	return task.Task{}, false
}

// sync pushes the cache snapshot into every view.
func (a *App) sync() {
	tasks := a.orch.Tasks()
	a.board.setTasks(tasks)
	a.table.setTasks(tasks, a.loc)
	a.dashboard.load(tasks, a.now, a.loc)
	if a.sess.ExpandedID != 0 {
		if _, ok := a.orch.Cache().Find(a.sess.ExpandedID); !ok {
			a.sess.SetExpanded(0)
		}
	}
}

func (a *App) setStatus(m statusMsg) {
	a.status = m.text
	a.statusErr = m.isError
	if m.isError {
		a.log.Warn("status", "msg", m.text)
	}
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	var content string
	switch {
	case a.form.active:
		content = a.form.view()
	case a.exportPicking:
		content = a.renderExportPicker()
	case a.sess.DescOpen:
		content = a.renderDescription()
	default:
		content = a.renderActiveView()
	}
	if act, ok := a.orch.Pending(); ok {
		content = a.renderConfirm(act)
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderActiveView() string {
	switch a.activeView {
	case viewTable:
		return a.table.view()
	case viewDashboard:
		return a.dashboard.view()
	}
	id, dragging := a.drag.Dragging()
	return a.board.view(a.now, a.loc, a.sess, id, dragging && !a.dropping)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("taskboard")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.statusErr {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	count := ""
	if a.orch.Cache().Loaded() {
		count = successStyle.Render(fmt.Sprintf(" ● %d tasks", a.orch.Cache().Len()))
	}

	left := footerStyle.Render(helpView)
	right := count + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderConfirm(act mutation.Action) string {
	rows := []string{
		titleStyle.Render("Confirm"),
		"",
		warningStyle.Render(act.Prompt()),
		"",
		mutedStyle.Render("  y: confirm  n/esc: cancel"),
	}
	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) renderDescription() string {
	t := a.sess.ActiveTask
	if t == nil {
		return ""
	}
	desc := t.Description
	if desc == "" {
		desc = mutedStyle.Render("No description")
	}
	meta := statusStyle(t.Status).Render(t.Status.Label()) + mutedStyle.Render("  "+formatRange(*t, a.loc))
	if task.IsOverdue(*t, a.now) {
		meta += errorStyle.Render("  overdue")
	}
	rows := []string{
		titleStyle.Render(t.Text),
		meta,
		"",
		lipgloss.NewStyle().Width(max(10, a.width-10)).Render(desc),
		"",
		mutedStyle.Render("  enter/esc: close"),
	}
	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

var exportFormats = []export.Format{export.FormatCSV, export.FormatJSON}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+string(f)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, exportCmd(exportFormats[a.exportCursor], a.orch.Tasks(), a.now, a.loc, "")
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// exportCmd writes tasks to path, or to the default file in the home
// directory when path is empty. Times are rendered in loc.
func exportCmd(f export.Format, tasks []task.Task, now time.Time, loc *time.Location, path string) tea.Cmd {
	return func() tea.Msg {
		if path == "" {
			p, err := export.DefaultPath(f, now.In(loc))
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
			}
			path = p
		}
		if err := export.Write(f, tasks, now, loc, path); err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
