package mutation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sadopc/taskboard/internal/logging"
	"github.com/sadopc/taskboard/internal/task"
)

// fakeRepo is an in-memory Repository that counts calls.
type fakeRepo struct {
	mu     sync.Mutex
	tasks  []task.Task
	nextID int64
	calls  map[string]int

	failWith error // returned by every mutating call when set
	listErr  error
}

func newFakeRepo(tasks ...task.Task) *fakeRepo {
	r := &fakeRepo{calls: map[string]int{}, nextID: 100}
	r.tasks = append(r.tasks, tasks...)
	return r
}

func (r *fakeRepo) count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[op]
}

func (r *fakeRepo) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		n += c
	}
	return n
}

func (r *fakeRepo) find(id int64) int {
	for i, t := range r.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (r *fakeRepo) List(ctx context.Context) ([]task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["list"]++
	if r.listErr != nil {
		return nil, r.listErr
	}
	return append([]task.Task(nil), r.tasks...), nil
}

func (r *fakeRepo) Create(ctx context.Context, d task.Draft) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["create"]++
	if r.failWith != nil {
		return task.Task{}, r.failWith
	}
	r.nextID++
	t := task.Task{ID: r.nextID, Text: d.Text, Description: d.Description, Status: d.Status, StartAt: d.StartAt, EndAt: d.EndAt}
	r.tasks = append(r.tasks, t)
	return t, nil
}

func (r *fakeRepo) Replace(ctx context.Context, id int64, d task.Draft) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["replace"]++
	if r.failWith != nil {
		return task.Task{}, r.failWith
	}
	i := r.find(id)
	if i < 0 {
		return task.Task{}, task.ErrNotFound
	}
	r.tasks[i] = task.Task{ID: id, Text: d.Text, Description: d.Description, Status: d.Status, StartAt: d.StartAt, EndAt: d.EndAt}
	return r.tasks[i], nil
}

func (r *fakeRepo) Patch(ctx context.Context, id int64, p task.Patch) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["patch"]++
	if r.failWith != nil {
		return task.Task{}, r.failWith
	}
	i := r.find(id)
	if i < 0 {
		return task.Task{}, task.ErrNotFound
	}
	r.tasks[i] = p.Apply(r.tasks[i])
	return r.tasks[i], nil
}

func (r *fakeRepo) Remove(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["remove"]++
	if r.failWith != nil {
		return r.failWith
	}
	i := r.find(id)
	if i < 0 {
		return task.ErrNotFound
	}
	r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
	return nil
}

var start = time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)

func seed(id int64, text string, s task.Status) task.Task {
	return task.Task{ID: id, Text: text, Description: "seeded", Status: s, StartAt: start, EndAt: start.Add(time.Hour)}
}

func newTestOrchestrator(t *testing.T, repo *fakeRepo) *Orchestrator {
	t.Helper()
	o := New(repo, NewCache(), logging.Discard())
	if err := o.Refresh(context.Background()); err != nil {
		t.Fatalf("initial refresh: %v", err)
	}
	return o
}

// ============================================================
// Confirmation flow
// ============================================================

func TestIntendMakesNoCalls(t *testing.T) {
	repo := newFakeRepo(seed(1, "a", task.StatusTodo))
	o := newTestOrchestrator(t, repo)
	before := repo.total()

	if err := o.Intend(Delete(1)); err != nil {
		t.Fatal(err)
	}
	if repo.total() != before {
		t.Fatal("Intend must not call the repository")
	}
	a, ok := o.Pending()
	if !ok || a.Kind != KindDelete || a.ID != 1 {
		t.Fatalf("unexpected pending %+v %v", a, ok)
	}
}

func TestNewDefaultsNilLoggerAndCache(t *testing.T) {
	repo := newFakeRepo(seed(1, "a", task.StatusTodo))
	o := New(repo, nil, nil)
	if o.Cache() == nil {
		t.Fatal("expected a fresh cache")
	}
	if err := o.Intend(Delete(1)); err != nil {
		t.Fatal(err)
	}
	o.Cancel()
	if err := o.MoveStatus(context.Background(), 1, task.StatusDone); err != nil {
		t.Fatal(err)
	}
	if got, ok := o.Cache().Find(1); !ok || got.Status != task.StatusDone {
		t.Fatalf("expected refreshed cache, got %+v %v", got, ok)
	}
}

func TestCancelMakesNoCalls(t *testing.T) {
	repo := newFakeRepo(seed(1, "a", task.StatusTodo))
	o := newTestOrchestrator(t, repo)
	before := repo.total()

	o.Intend(Delete(1))
	o.Cancel()

	if repo.total() != before {
		t.Fatal("Cancel must not call the repository")
	}
	if _, ok := o.Pending(); ok {
		t.Fatal("expected idle after cancel")
	}
	if len(o.Tasks()) != 1 {
		t.Fatal("cache should be untouched")
	}
}

func TestConfirmDelete(t *testing.T) {
	repo := newFakeRepo(seed(1, "a", task.StatusTodo), seed(2, "b", task.StatusDone))
	o := newTestOrchestrator(t, repo)
	lists := repo.count("list")

	o.Intend(Delete(1))
	if err := o.Confirm(context.Background()); err != nil {
		t.Fatal(err)
	}
	if repo.count("remove") != 1 {
		t.Fatalf("expected one remove, got %d", repo.count("remove"))
	}
	if repo.count("list") != lists+1 {
		t.Fatalf("expected one refresh, got %d", repo.count("list")-lists)
	}
	tasks := o.Tasks()
	if len(tasks) != 1 || tasks[0].ID != 2 {
		t.Fatalf("unexpected cache %+v", tasks)
	}
	if _, ok := o.Pending(); ok {
		t.Fatal("expected idle after confirm")
	}
}

func TestConfirmAdd(t *testing.T) {
	repo := newFakeRepo()
	o := newTestOrchestrator(t, repo)

	d := task.Draft{Text: "new", Description: "fresh one", Status: task.StatusTodo, StartAt: start, EndAt: start}
	o.Intend(Add(d))
	if err := o.Confirm(context.Background()); err != nil {
		t.Fatal(err)
	}
	if repo.count("create") != 1 {
		t.Fatal("expected one create")
	}
	if tasks := o.Tasks(); len(tasks) != 1 || tasks[0].Text != "new" {
		t.Fatalf("unexpected cache %+v", tasks)
	}
}

func TestConfirmEdit(t *testing.T) {
	repo := newFakeRepo(seed(1, "old", task.StatusTodo))
	o := newTestOrchestrator(t, repo)

	d := seed(1, "new", task.StatusBacklog).Draft()
	o.Intend(Edit(1, d))
	if err := o.Confirm(context.Background()); err != nil {
		t.Fatal(err)
	}
	if repo.count("replace") != 1 {
		t.Fatal("expected one replace")
	}
	got, _ := o.Cache().Find(1)
	if got.Text != "new" || got.Status != task.StatusBacklog {
		t.Fatalf("unexpected cached task %+v", got)
	}
}

func TestConfirmWithoutPending(t *testing.T) {
	repo := newFakeRepo()
	o := newTestOrchestrator(t, repo)
	before := repo.total()
	if err := o.Confirm(context.Background()); !errors.Is(err, ErrNothingPending) {
		t.Fatalf("expected ErrNothingPending, got %v", err)
	}
	if repo.total() != before {
		t.Fatal("no call expected")
	}
}

func TestIntendTwiceRejected(t *testing.T) {
	o := newTestOrchestrator(t, newFakeRepo())
	o.Intend(Delete(1))
	if err := o.Intend(Delete(2)); !errors.Is(err, ErrAlreadyPending) {
		t.Fatalf("expected ErrAlreadyPending, got %v", err)
	}
	a, _ := o.Pending()
	if a.ID != 1 {
		t.Fatal("first pending action must be kept")
	}
}

func TestIntendStatusPatchRejected(t *testing.T) {
	o := newTestOrchestrator(t, newFakeRepo())
	if err := o.Intend(MoveTo(1, task.StatusDone)); !errors.Is(err, ErrNeedsNoConfirm) {
		t.Fatalf("expected ErrNeedsNoConfirm, got %v", err)
	}
	if _, ok := o.Pending(); ok {
		t.Fatal("expected idle")
	}
}

// ============================================================
// Failures
// ============================================================

func TestConfirmNotFoundStillRefreshes(t *testing.T) {
	repo := newFakeRepo(seed(1, "a", task.StatusTodo))
	o := newTestOrchestrator(t, repo)

	// Someone else deleted it behind our back.
	repo.mu.Lock()
	repo.tasks = nil
	repo.mu.Unlock()
	lists := repo.count("list")

	o.Intend(Delete(1))
	err := o.Confirm(context.Background())
	if !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if repo.count("list") != lists+1 {
		t.Fatal("expected a refresh after not found")
	}
	if len(o.Tasks()) != 0 {
		t.Fatal("stale entry should be gone")
	}
}

func TestConfirmRequestFailureKeepsCache(t *testing.T) {
	repo := newFakeRepo(seed(1, "a", task.StatusTodo))
	o := newTestOrchestrator(t, repo)
	repo.failWith = &task.RequestFailure{Op: "remove", StatusCode: 500, Message: "boom"}
	lists := repo.count("list")

	o.Intend(Delete(1))
	err := o.Confirm(context.Background())
	if !errors.Is(err, task.ErrRequestFailure) {
		t.Fatalf("expected request failure, got %v", err)
	}
	if repo.count("list") != lists {
		t.Fatal("no refresh expected after a request failure")
	}
	if len(o.Tasks()) != 1 {
		t.Fatal("cache must be untouched")
	}
	if _, ok := o.Pending(); ok {
		t.Fatal("expected idle after a failed confirm")
	}
}

func TestRefreshFailureKeepsCache(t *testing.T) {
	repo := newFakeRepo(seed(1, "a", task.StatusTodo))
	o := newTestOrchestrator(t, repo)
	repo.listErr = &task.RequestFailure{Op: "list", Err: errors.New("connection refused")}

	if err := o.Refresh(context.Background()); !errors.Is(err, task.ErrRequestFailure) {
		t.Fatalf("expected request failure, got %v", err)
	}
	if len(o.Tasks()) != 1 {
		t.Fatal("cache must be untouched")
	}
}

// ============================================================
// Status moves
// ============================================================

func TestMoveStatusSkipsConfirmation(t *testing.T) {
	repo := newFakeRepo(seed(1, "a", task.StatusTodo))
	o := newTestOrchestrator(t, repo)

	if err := o.MoveStatus(context.Background(), 1, task.StatusInProgress); err != nil {
		t.Fatal(err)
	}
	if repo.count("patch") != 1 {
		t.Fatalf("expected exactly one patch, got %d", repo.count("patch"))
	}
	if _, ok := o.Pending(); ok {
		t.Fatal("status move must not go through pending")
	}
	got, _ := o.Cache().Find(1)
	if got.Status != task.StatusInProgress {
		t.Fatalf("expected inprogress in cache, got %s", got.Status)
	}
}

func TestMoveStatusInvalid(t *testing.T) {
	repo := newFakeRepo(seed(1, "a", task.StatusTodo))
	o := newTestOrchestrator(t, repo)
	if err := o.MoveStatus(context.Background(), 1, "archived"); err == nil {
		t.Fatal("expected error")
	}
	if repo.count("patch") != 0 {
		t.Fatal("no patch expected")
	}
}

func TestMoveStatusWhilePending(t *testing.T) {
	repo := newFakeRepo(seed(1, "a", task.StatusTodo), seed(2, "b", task.StatusTodo))
	o := newTestOrchestrator(t, repo)
	o.Intend(Delete(2))

	if err := o.MoveStatus(context.Background(), 1, task.StatusDone); err != nil {
		t.Fatal(err)
	}
	if a, ok := o.Pending(); !ok || a.ID != 2 {
		t.Fatal("drag must not disturb the pending action")
	}
}

// ============================================================
// Cache ordering
// ============================================================

func TestCacheDropsStaleResponse(t *testing.T) {
	c := NewCache()
	older := c.Begin()
	newer := c.Begin()

	if !c.Apply(newer, []task.Task{seed(2, "new", task.StatusTodo)}) {
		t.Fatal("newer response should apply")
	}
	if c.Apply(older, []task.Task{seed(1, "old", task.StatusTodo)}) {
		t.Fatal("older response must be dropped")
	}
	snap := c.Snapshot()
	if len(snap) != 1 || snap[0].Text != "new" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestCacheSnapshotIsCopy(t *testing.T) {
	c := NewCache()
	c.Apply(c.Begin(), []task.Task{seed(1, "a", task.StatusTodo)})
	snap := c.Snapshot()
	snap[0].Text = "mutated"
	if got, _ := c.Find(1); got.Text != "a" {
		t.Fatal("snapshot must not alias the cache")
	}
	if !c.Loaded() || c.Len() != 1 {
		t.Fatal("expected loaded cache with one task")
	}
}

func TestActionPrompt(t *testing.T) {
	if Delete(4).Prompt() != "Delete task #4?" {
		t.Fatalf("unexpected prompt %q", Delete(4).Prompt())
	}
	if Add(task.Draft{Text: "x"}).Prompt() != `Add task "x"?` {
		t.Fatal("unexpected add prompt")
	}
}
