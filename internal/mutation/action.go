package mutation

import (
	"fmt"

	"github.com/sadopc/taskboard/internal/task"
)

type Kind int

const (
	KindAdd Kind = iota
	KindEdit
	KindDelete
	KindStatusPatch
)

func (k Kind) String() string {
	switch k {
	case KindAdd:
		return "add"
	case KindEdit:
		return "edit"
	case KindDelete:
		return "delete"
	case KindStatusPatch:
		return "status"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Action is one change to commit. Which fields matter depends on Kind:
// Add uses Draft, Edit uses ID and Draft, Delete uses ID, StatusPatch
// uses ID and Status.
type Action struct {
	Kind   Kind
	ID     int64
	Draft  task.Draft
	Status task.Status
}

func Add(d task.Draft) Action { return Action{Kind: KindAdd, Draft: d} }
func Edit(id int64, d task.Draft) Action { return Action{Kind: KindEdit, ID: id, Draft: d} }
func Delete(id int64) Action { return Action{Kind: KindDelete, ID: id} }
func MoveTo(id int64, s task.Status) Action { return Action{Kind: KindStatusPatch, ID: id, Status: s} }

// Prompt is the confirmation question shown for a pending action.
func (a Action) Prompt() string {
	switch a.Kind {
	case KindAdd:
		return fmt.Sprintf("Add task %q?", a.Draft.Text)
	case KindEdit:
		return fmt.Sprintf("Save changes to %q?", a.Draft.Text)
	case KindDelete:
		return fmt.Sprintf("Delete task #%d?", a.ID)
	default:
		return fmt.Sprintf("Move task #%d to %s?", a.ID, a.Status.Label())
	}
}
