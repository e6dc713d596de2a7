// Package metrics derives the dashboard numbers from a task list: the four
// summary counts and the tasks-per-day series behind the chart.
package metrics

import (
	"fmt"
	"sort"
	"time"

	"github.com/sadopc/taskboard/internal/task"
)

type Summary struct {
	Total      int
	InProgress int
	Done       int
	Overdue    int
}

func Summarize(tasks []task.Task, now time.Time) Summary {
	var s Summary
	s.Total = len(tasks)
	for _, t := range tasks {
		switch t.Status {
		case task.StatusInProgress:
			s.InProgress++
		case task.StatusDone:
			s.Done++
		}
		if task.IsOverdue(t, now) {
			s.Overdue++
		}
	}
	return s
}

// Bucket is the number of tasks starting on one calendar day.
type Bucket struct {
	Day   time.Time // midnight in the bucketing location
	Count int
}

// Label is the YYYY-MM-DD form shown on the chart axis.
func (b Bucket) Label() string {
	return b.Day.Format("2006-01-02")
}

// Buckets groups tasks by the local calendar day of StartAt, ascending.
// Days without tasks are not emitted.
func Buckets(tasks []task.Task, loc *time.Location) []Bucket {
	if loc == nil {
		loc = time.Local
	}
	counts := make(map[time.Time]int)
	for _, t := range tasks {
		counts[midnight(t.StartAt, loc)]++
	}
	out := make([]Bucket, 0, len(counts))
	for day, n := range counts {
		out = append(out, Bucket{Day: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

// Window is the chart time range.
type Window string

const (
	Window7d  Window = "7d"
	Window30d Window = "30d"
	Window90d Window = "90d"

	DefaultWindow = Window90d
)

var Windows = []Window{Window7d, Window30d, Window90d}

func ParseWindow(v string) (Window, error) {
	for _, w := range Windows {
		if string(w) == v {
			return w, nil
		}
	}
	return "", fmt.Errorf("unknown chart window %q (want 7d, 30d or 90d)", v)
}

func (w Window) Days() int {
	switch w {
	case Window7d:
		return 7
	case Window30d:
		return 30
	default:
		return 90
	}
}

// Next cycles 7d -> 30d -> 90d -> 7d.
func (w Window) Next() Window {
	switch w {
	case Window7d:
		return Window30d
	case Window30d:
		return Window90d
	default:
		return Window7d
	}
}

// FilterWindow keeps the buckets whose day is on or after the cutoff
// (now minus the window). Day buckets sit at midnight, so the bucket exactly
// N days back is excluded unless now is itself midnight. If nothing survives
// but there were buckets to begin with, the full series is returned instead
// so the chart never goes blank.
func FilterWindow(buckets []Bucket, w Window, now time.Time, loc *time.Location) []Bucket {
	if loc == nil {
		loc = time.Local
	}
	cutoff := now.In(loc).AddDate(0, 0, -w.Days())
	out := make([]Bucket, 0, len(buckets))
	for _, b := range buckets {
		if !b.Day.Before(cutoff) {
			out = append(out, b)
		}
	}
	if len(out) == 0 {
		return buckets
	}
	return out
}

// Series is Buckets followed by FilterWindow.
func Series(tasks []task.Task, w Window, now time.Time, loc *time.Location) []Bucket {
	return FilterWindow(Buckets(tasks, loc), w, now, loc)
}

func midnight(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
