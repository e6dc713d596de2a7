// Package task holds the task model, the status rules and the error
// values shared by the client and the server.
package task

import "time"

type Task struct {
	ID          int64     `json:"id"`
	Text        string    `json:"text"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	StartAt     time.Time `json:"startAt"`
	EndAt       time.Time `json:"endAt"`
}

// Draft is a task without an id: the body of a create or a full replace.
type Draft struct {
	Text        string    `json:"text"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	StartAt     time.Time `json:"startAt"`
	EndAt       time.Time `json:"endAt"`
}

// Patch carries only the fields that should change. Nil means untouched.
type Patch struct {
	Text        *string    `json:"text,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	StartAt     *time.Time `json:"startAt,omitempty"`
	EndAt       *time.Time `json:"endAt,omitempty"`
}

// Draft returns the mutable fields of t.
func (t Task) Draft() Draft {
	return Draft{
		Text:        t.Text,
		Description: t.Description,
		Status:      t.Status,
		StartAt:     t.StartAt,
		EndAt:       t.EndAt,
	}
}

// StatusPatch builds a patch that only moves the task to s.
func StatusPatch(s Status) Patch {
	return Patch{Status: &s}
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Text == nil && p.Description == nil && p.Status == nil &&
		p.StartAt == nil && p.EndAt == nil
}

// Apply returns t with the patch fields copied over.
func (p Patch) Apply(t Task) Task {
	if p.Text != nil {
		t.Text = *p.Text
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.StartAt != nil {
		t.StartAt = *p.StartAt
	}
	if p.EndAt != nil {
		t.EndAt = *p.EndAt
	}
	return t
}
