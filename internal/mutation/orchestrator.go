// Package mutation turns user intents into repository calls: confirmed
// add/edit/delete, unconfirmed status moves, and cache refreshes.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/sadopc/taskboard/internal/logging"
	"github.com/sadopc/taskboard/internal/task"
)

var (
	ErrAlreadyPending = errors.New("another action is awaiting confirmation")
	ErrNothingPending = errors.New("no action is awaiting confirmation")
	ErrNeedsNoConfirm = errors.New("status moves are committed without confirmation")
)

// Repository is the remote task store.
type Repository interface {
	List(ctx context.Context) ([]task.Task, error)
	Create(ctx context.Context, d task.Draft) (task.Task, error)
	Replace(ctx context.Context, id int64, d task.Draft) (task.Task, error)
	Patch(ctx context.Context, id int64, p task.Patch) (task.Task, error)
	Remove(ctx context.Context, id int64) error
}

// Orchestrator is Idle or Pending(action). Add, Edit and Delete must pass
// through Pending and be confirmed; status moves skip it.
type Orchestrator struct {
	repo  Repository
	cache *Cache
	log   *log.Logger

	mu      sync.Mutex
	pending *Action
}

// New builds an Orchestrator. A nil cache or logger gets a fresh cache or
// a discarding logger.
func New(repo Repository, cache *Cache, logger *log.Logger) *Orchestrator {
	if cache == nil {
		cache = NewCache()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Orchestrator{repo: repo, cache: cache, log: logger}
}

func (o *Orchestrator) Cache() *Cache { return o.cache }

// Tasks is a snapshot of the cached list.
func (o *Orchestrator) Tasks() []task.Task { return o.cache.Snapshot() }

// Intend records a to-be-confirmed action. Nothing is sent yet.
func (o *Orchestrator) Intend(a Action) error {
	if a.Kind == KindStatusPatch {
		return ErrNeedsNoConfirm
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pending != nil {
		return ErrAlreadyPending
	}
	o.pending = &a
	o.log.Debug("action pending", "kind", a.Kind, "id", a.ID)
	return nil
}

// Pending returns the action awaiting confirmation, if any.
func (o *Orchestrator) Pending() (Action, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pending == nil {
		return Action{}, false
	}
	return *o.pending, true
}

// Cancel drops the pending action without any repository call.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pending != nil {
		o.log.Debug("action cancelled", "kind", o.pending.Kind, "id", o.pending.ID)
	}
	o.pending = nil
}

// Release moves back to Idle and hands over the pending action, so the
// caller can Commit it elsewhere (a tea.Cmd, for instance).
func (o *Orchestrator) Release() (Action, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pending == nil {
		return Action{}, ErrNothingPending
	}
	a := *o.pending
	o.pending = nil
	return a, nil
}

// Confirm commits the pending action: Release followed by Commit.
func (o *Orchestrator) Confirm(ctx context.Context) error {
	a, err := o.Release()
	if err != nil {
		return err
	}
	return o.Commit(ctx, a)
}

// MoveStatus is the drag path: one status-only patch, then a refresh.
func (o *Orchestrator) MoveStatus(ctx context.Context, id int64, s task.Status) error {
	if !s.Valid() {
		return fmt.Errorf("move task %d: unknown status %q", id, s)
	}
	return o.Commit(ctx, MoveTo(id, s))
}

// Commit makes exactly one repository call for a. On success, and on
// ErrNotFound so the stale row disappears, the cache is refreshed. A
// request failure leaves the cache as it was.
func (o *Orchestrator) Commit(ctx context.Context, a Action) error {
	err := o.call(ctx, a)
	switch {
	case err == nil:
		o.log.Info("action committed", "kind", a.Kind, "id", a.ID)
	case errors.Is(err, task.ErrNotFound):
		o.log.Warn("task vanished", "kind", a.Kind, "id", a.ID)
		if rerr := o.Refresh(ctx); rerr != nil {
			return errors.Join(err, rerr)
		}
		return err
	default:
		o.log.Error("action failed", "kind", a.Kind, "id", a.ID, "err", err)
		return err
	}
	return o.Refresh(ctx)
}

func (o *Orchestrator) call(ctx context.Context, a Action) error {
	var err error
	switch a.Kind {
	case KindAdd:
		_, err = o.repo.Create(ctx, a.Draft)
	case KindEdit:
		_, err = o.repo.Replace(ctx, a.ID, a.Draft)
	case KindDelete:
		err = o.repo.Remove(ctx, a.ID)
	case KindStatusPatch:
		_, err = o.repo.Patch(ctx, a.ID, task.StatusPatch(a.Status))
	default:
		return fmt.Errorf("unknown action kind %v", a.Kind)
	}
	if err != nil {
		return fmt.Errorf("%s task: %w", a.Kind, err)
	}
	return nil
}

// Refresh lists the repository and applies the result unless a newer
// refresh has already been applied.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	seq := o.cache.Begin()
	tasks, err := o.repo.List(ctx)
	if err != nil {
		o.log.Error("refresh failed", "err", err)
		return fmt.Errorf("refresh: %w", err)
	}
	if !o.cache.Apply(seq, tasks) {
		o.log.Debug("stale refresh dropped", "seq", seq)
	}
	return nil
}
