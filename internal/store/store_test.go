package store

import (
	"errors"
	"testing"
	"time"

	"github.com/sadopc/taskboard/internal/task"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleDraft(text string) task.Draft {
	start := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	return task.Draft{
		Text:        text,
		Description: "write the thing",
		Status:      task.StatusTodo,
		StartAt:     start,
		EndAt:       start.Add(8 * time.Hour),
	}
}

// mustCreate is a test helper that inserts a todo and fails the test on error.
func mustCreate(t *testing.T, s *Store, text string) task.Task {
	t.Helper()
	tk, err := s.CreateTodo(sampleDraft(text))
	if err != nil {
		t.Fatalf("create todo: %v", err)
	}
	return tk
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != currentVersion {
		t.Fatalf("expected user_version %d, got %d", currentVersion, version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/taskboard.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	mustCreate(t, s, "persisted")
	s.Close()

	// Reopen: data survives and migrations do not run again.
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	tasks, err := s2.ListTodos()
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 || tasks[0].Text != "persisted" {
		t.Fatalf("expected persisted todo, got %+v", tasks)
	}
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	if err := s.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

// ============================================================
// Todos
// ============================================================

func TestCreateAndGetTodo(t *testing.T) {
	s := newTestStore(t)
	created := mustCreate(t, s, "Write docs")

	if created.ID == 0 {
		t.Fatal("expected non-zero ID")
	}
	got, err := s.GetTodo(created.ID)
	if err != nil {
		t.Fatal(err)
	}
	d := sampleDraft("Write docs")
	if got.Text != d.Text || got.Description != d.Description || got.Status != d.Status {
		t.Fatalf("unexpected todo %+v", got)
	}
	if !got.StartAt.Equal(d.StartAt) || !got.EndAt.Equal(d.EndAt) {
		t.Fatalf("timestamps: got %v..%v", got.StartAt, got.EndAt)
	}
}

func TestCreateTodoNormalizesToUTC(t *testing.T) {
	s := newTestStore(t)
	d := sampleDraft("tz")
	d.StartAt = time.Date(2024, 6, 10, 9, 0, 0, 0, time.FixedZone("X", 3*3600))
	created, err := s.CreateTodo(d)
	if err != nil {
		t.Fatal(err)
	}
	if created.StartAt.Location() != time.UTC {
		t.Fatalf("expected UTC, got %v", created.StartAt.Location())
	}
	if !created.StartAt.Equal(d.StartAt) {
		t.Fatalf("instant changed: %v vs %v", created.StartAt, d.StartAt)
	}
}

func TestGetTodoNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetTodo(999)
	if !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListTodos(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, "A")
	mustCreate(t, s, "B")
	mustCreate(t, s, "C")

	tasks, err := s.ListTodos()
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 todos, got %d", len(tasks))
	}
	for i, want := range []string{"A", "B", "C"} {
		if tasks[i].Text != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, tasks[i].Text)
		}
	}
}

func TestListTodosEmpty(t *testing.T) {
	s := newTestStore(t)
	tasks, err := s.ListTodos()
	if err != nil {
		t.Fatal(err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", tasks)
	}
}

func TestReplaceTodo(t *testing.T) {
	s := newTestStore(t)
	created := mustCreate(t, s, "Old")

	d := sampleDraft("New")
	d.Status = task.StatusInProgress
	d.Description = "changed description"
	got, err := s.ReplaceTodo(created.ID, d)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != created.ID || got.Text != "New" || got.Status != task.StatusInProgress {
		t.Fatalf("unexpected todo %+v", got)
	}
}

func TestReplaceTodoNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.ReplaceTodo(42, sampleDraft("x"))
	if !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPatchTodoStatusOnly(t *testing.T) {
	s := newTestStore(t)
	created := mustCreate(t, s, "Drag me")

	got, err := s.PatchTodo(created.ID, task.StatusPatch(task.StatusDone))
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != task.StatusDone {
		t.Fatalf("expected done, got %s", got.Status)
	}
	if got.Text != created.Text || !got.EndAt.Equal(created.EndAt) {
		t.Fatalf("patch changed other fields: %+v", got)
	}
}

func TestPatchTodoEmpty(t *testing.T) {
	s := newTestStore(t)
	created := mustCreate(t, s, "Same")
	got, err := s.PatchTodo(created.ID, task.Patch{})
	if err != nil {
		t.Fatal(err)
	}
	if got != created {
		t.Fatalf("empty patch changed todo: %+v", got)
	}
}

func TestPatchTodoNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.PatchTodo(7, task.StatusPatch(task.StatusDone))
	if !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTodo(t *testing.T) {
	s := newTestStore(t)
	a := mustCreate(t, s, "A")
	b := mustCreate(t, s, "B")

	if err := s.DeleteTodo(a.ID); err != nil {
		t.Fatal(err)
	}
	tasks, _ := s.ListTodos()
	if len(tasks) != 1 || tasks[0].ID != b.ID {
		t.Fatalf("expected only B left, got %+v", tasks)
	}

	// Second delete of the same id reports not found.
	if err := s.DeleteTodo(a.ID); !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIDsNotReused(t *testing.T) {
	s := newTestStore(t)
	a := mustCreate(t, s, "A")
	s.DeleteTodo(a.ID)
	b := mustCreate(t, s, "B")
	if b.ID == a.ID {
		t.Fatal("autoincrement should not reuse deleted ids")
	}
}

// ============================================================
// Close
// ============================================================

func TestCloseStore(t *testing.T) {
	s, _ := NewMemory()
	if err := s.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
}
