package schedule

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sadopc/taskboard/internal/task"
)

const (
	DescriptionMin = 5
	DescriptionMax = 100
)

// Form is the add/edit form as typed by the user.
type Form struct {
	Text        string
	Description string
	Status      string
	Candidate
}

// FormFromTask pre-fills a form for editing t.
func FormFromTask(t task.Task, loc *time.Location) Form {
	f := Form{
		Text:        t.Text,
		Description: t.Description,
		Status:      string(t.Status),
	}
	f.StartDate, f.StartTime = SplitTimestamp(t.StartAt, loc)
	f.EndDate, f.EndTime = SplitTimestamp(t.EndAt, loc)
	return f
}

// ValidateForm checks the whole form and returns the draft to submit.
// All problems are reported together.
func ValidateForm(f Form, now time.Time, loc *time.Location) (task.Draft, error) {
	verr := &ValidationError{}

	text := strings.TrimSpace(f.Text)
	if text == "" {
		verr.add(FieldText, CodeRequired, "Text is required")
	}

	n := utf8.RuneCountInString(f.Description)
	switch {
	case n < DescriptionMin:
		verr.add(FieldDescription, CodeTooShort, "Description required")
	case n > DescriptionMax:
		verr.add(FieldDescription, CodeTooLong, "Description too long")
	}

	status, err := task.ParseStatus(f.Status)
	if err != nil {
		verr.add(FieldStatus, CodeInvalid, "Status must be one of todo, backlog, inprogress, done, cancelled")
	}

	w := validateInto(verr, f.Candidate, now, loc)
	if err := verr.orNil(); err != nil {
		return task.Draft{}, err
	}

	return task.Draft{
		Text:        text,
		Description: f.Description,
		Status:      status,
		StartAt:     w.StartAt,
		EndAt:       w.EndAt,
	}, nil
}

// CheckText and CheckDescription are the single-field rules, usable as
// inline validators while the user is still typing.
func CheckText(s string) error {
	if strings.TrimSpace(s) == "" {
		return &ValidationError{Fields: []FieldError{{FieldText, CodeRequired, "Text is required"}}}
	}
	return nil
}

func CheckDescription(s string) error {
	n := utf8.RuneCountInString(s)
	if n < DescriptionMin {
		return &ValidationError{Fields: []FieldError{{FieldDescription, CodeTooShort, "Description required"}}}
	}
	if n > DescriptionMax {
		return &ValidationError{Fields: []FieldError{{FieldDescription, CodeTooLong, "Description too long"}}}
	}
	return nil
}
