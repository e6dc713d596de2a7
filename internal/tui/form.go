package tui

import (
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/sadopc/taskboard/internal/schedule"
	"github.com/sadopc/taskboard/internal/task"
)

type formSubmittedMsg struct {
	draft task.Draft
}

type formCancelledMsg struct{}

// formModel is the add/edit sheet. values is a pointer so the huh fields
// keep writing to the same struct across value copies of the model.
type formModel struct {
	width  int
	active bool
	title  string
	form   *huh.Form
	values *schedule.Form
	errs   []schedule.FieldError
}

func newFormModel() formModel {
	return formModel{values: &schedule.Form{}}
}

func (f *formModel) setSize(w int) {
	f.width = w
}

// openAdd starts an empty form: today, from now to one hour later.
func (f formModel) openAdd(now time.Time, loc *time.Location) (formModel, tea.Cmd) {
	sd, st := schedule.SplitTimestamp(now, loc)
	ed, et := schedule.SplitTimestamp(now.Add(time.Hour), loc)
	*f.values = schedule.Form{
		Status: string(task.StatusTodo),
		Candidate: schedule.Candidate{
			StartDate: sd, StartTime: st,
			EndDate: ed, EndTime: et,
		},
	}
	f.title = "New Task"
	return f.start()
}

func (f formModel) openEdit(t task.Task, loc *time.Location) (formModel, tea.Cmd) {
	*f.values = schedule.FormFromTask(t, loc)
	f.title = "Edit Task"
	return f.start()
}

func (f formModel) start() (formModel, tea.Cmd) {
	f.errs = nil
	f.form = f.build()
	f.active = true
	return f, f.form.Init()
}

func (f formModel) build() *huh.Form {
	statusOptions := make([]huh.Option[string], len(task.Statuses))
	for i, s := range task.Statuses {
		statusOptions[i] = huh.NewOption(s.Label(), string(s))
	}

	v := f.values
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(&v.Text).Validate(inline(schedule.CheckText)),
			huh.NewText().Title("Description").Value(&v.Description).Validate(inline(schedule.CheckDescription)),
			huh.NewSelect[string]().Title("Status").Options(statusOptions...).Value(&v.Status),
		),
		huh.NewGroup(
			huh.NewInput().Title("Start date").Placeholder("YYYY-MM-DD").Value(&v.StartDate),
			huh.NewInput().Title("Start time").Placeholder("HH:MM").Value(&v.StartTime),
			huh.NewInput().Title("End date").Placeholder("YYYY-MM-DD").Value(&v.EndDate),
			huh.NewInput().Title("End time").Placeholder("HH:MM").Value(&v.EndTime),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

// inline adapts a schedule checker to huh's validator, keeping only the
// human message.
func inline(check func(string) error) func(string) error {
	return func(s string) error {
		err := check(s)
		var verr *schedule.ValidationError
		if errors.As(err, &verr) && len(verr.Fields) > 0 {
			return errors.New(verr.Fields[0].Message)
		}
		return err
	}
}

// submit validates the current values. On failure the errors are kept for
// display and the values stay as typed.
func (f *formModel) submit(now time.Time, loc *time.Location) (task.Draft, bool) {
	d, err := schedule.ValidateForm(*f.values, now, loc)
	if err != nil {
		var verr *schedule.ValidationError
		if errors.As(err, &verr) {
			f.errs = verr.Fields
		} else {
			f.errs = []schedule.FieldError{{Message: err.Error()}}
		}
		return task.Draft{}, false
	}
	f.errs = nil
	return d, true
}

func (f formModel) update(msg tea.Msg, now time.Time, loc *time.Location) (formModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			f.active = false
			f.form = nil
			return f, func() tea.Msg { return formCancelledMsg{} }
		}
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	switch f.form.State {
	case huh.StateAborted:
		f.active = false
		f.form = nil
		return f, func() tea.Msg { return formCancelledMsg{} }
	case huh.StateCompleted:
		d, ok := f.submit(now, loc)
		if !ok {
			f.form = f.build()
			return f, f.form.Init()
		}
		f.active = false
		f.form = nil
		return f, func() tea.Msg { return formSubmittedMsg{draft: d} }
	}
	return f, cmd
}

func (f formModel) view() string {
	if f.form == nil {
		return ""
	}
	rows := []string{titleStyle.Render(f.title), ""}
	if len(f.errs) > 0 {
		for _, e := range f.errs {
			rows = append(rows, errorStyle.Render("• "+e.Message))
		}
		rows = append(rows, "")
	}
	rows = append(rows, f.form.View())
	rows = append(rows, mutedStyle.Render("  esc: cancel"))
	return activePanelStyle.Width(max(20, f.width-4)).Render(strings.Join(rows, "\n"))
}

// errorFor returns the message recorded for field, for tests and hints.
func (f formModel) errorFor(field string) string {
	for _, e := range f.errs {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}
