package mutation

import (
	"sync"

	"github.com/sadopc/taskboard/internal/task"
)

// Cache is the client-side copy of the task list. Only the Orchestrator
// writes to it; views read snapshots.
//
// Each refresh reserves a sequence number before it starts. A response is
// applied only if no later refresh has been applied already, so a slow
// list that finishes last cannot overwrite newer data.
type Cache struct {
	mu      sync.RWMutex
	tasks   []task.Task
	next    uint64
	applied uint64
	loaded  bool
}

func NewCache() *Cache {
	return &Cache{}
}

// Begin reserves the sequence number for a refresh about to start.
func (c *Cache) Begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	return c.next
}

// Apply stores tasks fetched by refresh seq. It reports false and keeps
// the current list when a newer refresh already landed.
func (c *Cache) Apply(seq uint64, tasks []task.Task) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq <= c.applied {
		return false
	}
	c.applied = seq
	c.tasks = append([]task.Task(nil), tasks...)
	c.loaded = true
	return true
}

func (c *Cache) Snapshot() []task.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]task.Task(nil), c.tasks...)
}

func (c *Cache) Find(id int64) (task.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return task.Task{}, false
}

// Loaded reports whether any refresh has been applied yet.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tasks)
}
