// Package session holds the view state of one terminal client: which
// overlays are open and which task they are about.
package session

import "github.com/sadopc/taskboard/internal/task"

// State is owned by the TUI model and mutated only from its update loop.
type State struct {
	SheetOpen  bool
	EditTarget *task.Task
	ExpandedID int64 // 0 when nothing is expanded
	DescOpen   bool
	ActiveTask *task.Task
}

// OpenSheet opens the add/edit form. With no edit target it is an add.
func (s *State) OpenSheet() { s.SheetOpen = true }

// CloseSheet closes the form and forgets the edit target.
func (s *State) CloseSheet() {
	s.SheetOpen = false
	s.EditTarget = nil
}

func (s *State) SetEditTarget(t task.Task) {
	s.EditTarget = &t
	s.SheetOpen = true
}

func (s *State) ClearEditTarget() { s.EditTarget = nil }

// Editing reports whether the open form edits an existing task.
func (s *State) Editing() bool { return s.SheetOpen && s.EditTarget != nil }

func (s *State) SetExpanded(id int64) { s.ExpandedID = id }

// ToggleExpanded expands id, or collapses it when it already is.
func (s *State) ToggleExpanded(id int64) {
	if s.ExpandedID == id {
		s.ExpandedID = 0
		return
	}
	s.ExpandedID = id
}

func (s *State) IsExpanded(id int64) bool { return id != 0 && s.ExpandedID == id }

func (s *State) OpenDesc(t task.Task) {
	s.ActiveTask = &t
	s.DescOpen = true
}

func (s *State) CloseDesc() {
	s.DescOpen = false
	s.ActiveTask = nil
}

// Overlay reports whether any modal is covering the view.
func (s *State) Overlay() bool { return s.SheetOpen || s.DescOpen }
