// Package board implements drag-and-drop of tasks between status columns.
package board

import (
	"context"
	"errors"
	"sync"

	"github.com/sadopc/taskboard/internal/task"
)

var ErrNoDrag = errors.New("no task is being dragged")

// Mover commits a status change. *mutation.Orchestrator satisfies it.
type Mover interface {
	MoveStatus(ctx context.Context, id int64, s task.Status) error
}

// Controller carries the dragged task id between DragStart and Drop.
// Drop may run on a different goroutine than DragStart.
type Controller struct {
	mover Mover

	mu       sync.Mutex
	dragging int64
	active   bool
}

func NewController(m Mover) *Controller {
	return &Controller{mover: m}
}

func (c *Controller) DragStart(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dragging = id
	c.active = true
}

// Dragging returns the id in flight, if any.
func (c *Controller) Dragging() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dragging, c.active
}

func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dragging = 0
	c.active = false
}

func (c *Controller) take() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.dragging, c.active
	c.dragging = 0
	c.active = false
	return id, ok
}

// Drop moves the dragged task to s. The drag is cleared whether or not
// the move succeeds. Dropping on the task's current column still sends
// the patch.
func (c *Controller) Drop(ctx context.Context, s task.Status) error {
	id, ok := c.take()
	if !ok {
		return ErrNoDrag
	}
	return c.mover.MoveStatus(ctx, id, s)
}

// Column is one status lane of the board.
type Column struct {
	Status task.Status
	Tasks  []task.Task
}

// Columns groups tasks into one column per status, in status order,
// keeping the input order within each column. Tasks with an unknown
// status are left out.
func Columns(tasks []task.Task) []Column {
	cols := make([]Column, len(task.Statuses))
	for i, s := range task.Statuses {
		cols[i] = Column{Status: s}
	}
	for _, t := range tasks {
		if i := t.Status.Index(); i >= 0 {
			cols[i].Tasks = append(cols[i].Tasks, t)
		}
	}
	return cols
}
