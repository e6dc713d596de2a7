package task

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusTodo       Status = "todo"
	StatusBacklog    Status = "backlog"
	StatusInProgress Status = "inprogress"
	StatusDone       Status = "done"
	StatusCancelled  Status = "cancelled"
)

// Statuses is the closed status set in board column order.
var Statuses = []Status{
	StatusTodo,
	StatusBacklog,
	StatusInProgress,
	StatusDone,
	StatusCancelled,
}

var statusLabels = map[Status]string{
	StatusTodo:       "Todo",
	StatusBacklog:    "Backlog",
	StatusInProgress: "In Progress",
	StatusDone:       "Done",
	StatusCancelled:  "Cancelled",
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Index returns the column position of s, or -1.
func (s Status) Index() int {
	for i, st := range Statuses {
		if st == s {
			return i
		}
	}
	return -1
}

func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", v)
	}
	return s, nil
}

// IsOverdue reports whether the task's end has passed while it is not done.
// Cancelled tasks count as overdue too.
func IsOverdue(t Task, now time.Time) bool {
	return t.EndAt.Before(now) && t.Status != StatusDone
}

// Urgency is the highlight tier of an in-progress task.
type Urgency string

const (
	UrgencyNormal   Urgency = "normal"
	UrgencyWarning  Urgency = "warning"
	UrgencyCritical Urgency = "critical"
	UrgencyBreached Urgency = "breached"
)

// UrgencyOf classifies how close an in-progress task is to its end time.
// Every other status is normal. The result depends on now, so callers
// re-evaluate it on every render.
func UrgencyOf(t Task, now time.Time) Urgency {
	if t.Status != StatusInProgress {
		return UrgencyNormal
	}
	hoursLeft := t.EndAt.Sub(now).Hours()
	switch {
	case hoursLeft <= 0:
		return UrgencyBreached
	case hoursLeft < 2:
		return UrgencyCritical
	case hoursLeft < 6:
		return UrgencyWarning
	default:
		return UrgencyNormal
	}
}
