// Package schedule validates the date and time parts a user enters for a
// task and composes them into start/end timestamps.
package schedule

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout        = "2006-01-02"
	TimeLayout        = "15:04"
	timeLayoutSeconds = "15:04:05"
)

// Field names used in FieldError.Field.
const (
	FieldText        = "text"
	FieldDescription = "description"
	FieldStatus      = "status"
	FieldStartDate   = "startDate"
	FieldStartTime   = "startTime"
	FieldEndDate     = "endDate"
	FieldEndTime     = "endTime"
)

// Error codes used in FieldError.Code.
const (
	CodeRequired = "required"
	CodeInvalid  = "invalid"
	CodePastDate = "past_date"
	CodeTooShort = "too_short"
	CodeTooLong  = "too_long"
)

type FieldError struct {
	Field   string
	Code    string
	Message string
}

// ValidationError collects every field problem found in one pass. It is
// shown next to the form and never sent to the server.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field returns the error recorded for name, if any.
func (e *ValidationError) Field(name string) (FieldError, bool) {
	for _, f := range e.Fields {
		if f.Field == name {
			return f, true
		}
	}
	return FieldError{}, false
}

func (e *ValidationError) Has(name string) bool {
	_, ok := e.Field(name)
	return ok
}

func (e *ValidationError) add(field, code, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Code: code, Message: msg})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Candidate is the raw schedule as typed: separate date and time parts.
type Candidate struct {
	StartDate string
	StartTime string
	EndDate   string
	EndTime   string
}

// Window is an accepted start/end pair.
type Window struct {
	StartAt time.Time
	EndAt   time.Time
}

// Validate checks each part is present and well formed, composes the two
// timestamps in loc and rejects a start or end whose calendar day is before
// today. Start and end are checked independently: an end before the start
// is accepted. The returned error is nil or a *ValidationError.
func Validate(c Candidate, now time.Time, loc *time.Location) (Window, error) {
	verr := &ValidationError{}
	w := validateInto(verr, c, now, loc)
	if err := verr.orNil(); err != nil {
		return Window{}, err
	}
	return w, nil
}

func validateInto(verr *ValidationError, c Candidate, now time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = time.Local
	}
	today := StartOfDay(now, loc)

	startAt, startOK := compose(verr, FieldStartDate, c.StartDate, FieldStartTime, c.StartTime, loc, "Start")
	endAt, endOK := compose(verr, FieldEndDate, c.EndDate, FieldEndTime, c.EndTime, loc, "End")

	if startOK && startAt.Before(today) {
		verr.add(FieldStartDate, CodePastDate, "Only today or future dates allowed")
	}
	if endOK && endAt.Before(today) {
		verr.add(FieldEndDate, CodePastDate, "End date must be today or later")
	}
	return Window{StartAt: startAt, EndAt: endAt}
}

func compose(verr *ValidationError, dateField, date, timeField, clock string, loc *time.Location, label string) (time.Time, bool) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)

	ok := true
	var day time.Time
	if date == "" {
		verr.add(dateField, CodeRequired, label+" date is required")
		ok = false
	} else {
		d, err := time.ParseInLocation(DateLayout, date, loc)
		if err != nil {
			verr.add(dateField, CodeInvalid, fmt.Sprintf("%s date must look like YYYY-MM-DD", label))
			ok = false
		}
		day = d
	}

	var tod time.Time
	if clock == "" {
		verr.add(timeField, CodeRequired, label+" time is required")
		ok = false
	} else {
		t, err := parseClock(clock)
		if err != nil {
			verr.add(timeField, CodeInvalid, fmt.Sprintf("%s time must look like HH:MM", label))
			ok = false
		}
		tod = t
	}

	if !ok {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), tod.Second(), 0, loc), true
}

func parseClock(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err == nil {
		return t, nil
	}
	return time.Parse(timeLayoutSeconds, s)
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// SplitTimestamp renders t as the date and time parts a form expects.
func SplitTimestamp(t time.Time, loc *time.Location) (date, clock string) {
	t = t.In(loc)
	return t.Format(DateLayout), t.Format(TimeLayout)
}
