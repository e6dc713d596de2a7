package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/taskboard/internal/logging"
	"github.com/sadopc/taskboard/internal/server"
	"github.com/sadopc/taskboard/internal/store"
	"github.com/sadopc/taskboard/internal/task"
)

// newTestClient wires a client to a real server over an in-memory store.
func newTestClient(t *testing.T) *Client {
	t.Helper()
	st, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	srv, err := server.New(st, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return New(ts.URL+"/api", 0)
}

func stubClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return New(ts.URL+"/api/", 0)
}

func draft(text string) task.Draft {
	start := time.Date(2030, 3, 1, 9, 0, 0, 0, time.UTC)
	return task.Draft{
		Text:        text,
		Description: "some words",
		Status:      task.StatusTodo,
		StartAt:     start,
		EndAt:       start.Add(2 * time.Hour),
	}
}

// ============================================================
// Round trip against the real server
// ============================================================

func TestCreateListReplacePatchRemove(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	tasks, err := c.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Fatalf("expected empty list, got %#v", tasks)
	}

	created, err := c.Create(ctx, draft("first"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 || created.Text != "first" {
		t.Fatalf("unexpected created %+v", created)
	}

	d := draft("renamed")
	d.Status = task.StatusBacklog
	replaced, err := c.Replace(ctx, created.ID, d)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if replaced.Text != "renamed" || replaced.Status != task.StatusBacklog {
		t.Fatalf("unexpected replaced %+v", replaced)
	}

	patched, err := c.Patch(ctx, created.ID, task.StatusPatch(task.StatusDone))
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if patched.Status != task.StatusDone || patched.Text != "renamed" {
		t.Fatalf("unexpected patched %+v", patched)
	}

	if err := c.Remove(ctx, created.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	tasks, _ = c.List(ctx)
	if len(tasks) != 0 {
		t.Fatalf("expected empty after remove, got %+v", tasks)
	}
}

func TestNotFoundMapsToErrNotFound(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	if err := c.Remove(ctx, 404); !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("remove: expected ErrNotFound, got %v", err)
	}
	if _, err := c.Replace(ctx, 404, draft("x")); !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("replace: expected ErrNotFound, got %v", err)
	}
	_, err := c.Patch(ctx, 404, task.StatusPatch(task.StatusDone))
	if !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("patch: expected ErrNotFound, got %v", err)
	}
	if errors.Is(err, task.ErrRequestFailure) {
		t.Fatal("not found must not be a request failure")
	}
}

// ============================================================
// Failure mapping
// ============================================================

func TestServerErrorIsRequestFailure(t *testing.T) {
	c := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"success":false,"message":"db locked"}`)
	})
	_, err := c.List(context.Background())
	if !errors.Is(err, task.ErrRequestFailure) {
		t.Fatalf("expected request failure, got %v", err)
	}
	var rf *task.RequestFailure
	if !errors.As(err, &rf) || rf.StatusCode != 500 || rf.Message != "db locked" {
		t.Fatalf("unexpected failure %+v", rf)
	}
}

func TestUndecodableBodyIsRequestFailure(t *testing.T) {
	c := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html>`)
	})
	if _, err := c.List(context.Background()); !errors.Is(err, task.ErrRequestFailure) {
		t.Fatalf("expected request failure, got %v", err)
	}
}

func TestEnvelopeWithoutDataIsRequestFailure(t *testing.T) {
	c := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"success":true}`)
	})
	if _, err := c.Create(context.Background(), draft("x")); !errors.Is(err, task.ErrRequestFailure) {
		t.Fatalf("expected request failure, got %v", err)
	}
}

func TestTransportErrorIsRequestFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := New(url+"/api", 0)
	err := c.Remove(context.Background(), 1)
	var rf *task.RequestFailure
	if !errors.As(err, &rf) || rf.StatusCode != 0 {
		t.Fatalf("expected transport failure, got %v", err)
	}
}

func TestContextCancelled(t *testing.T) {
	c := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[]`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.List(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
}

// ============================================================
// Wire shape
// ============================================================

func TestPatchSendsOnlyStatus(t *testing.T) {
	var got map[string]any
	var path, method string
	c := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		path, method = r.URL.Path, r.Method
		json.NewDecoder(r.Body).Decode(&got)
		io.WriteString(w, `{"success":true,"data":{"id":3,"text":"t","status":"done"}}`)
	})
	if _, err := c.Patch(context.Background(), 3, task.StatusPatch(task.StatusDone)); err != nil {
		t.Fatal(err)
	}
	if method != http.MethodPatch || path != "/api/3" {
		t.Fatalf("unexpected request %s %s", method, path)
	}
	if len(got) != 1 || got["status"] != "done" {
		t.Fatalf("expected status-only body, got %v", got)
	}
}

func TestBaseURLTrailingSlash(t *testing.T) {
	var path string
	c := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		io.WriteString(w, `[]`)
	})
	c.List(context.Background())
	if strings.Count(path, "//") != 0 || path != "/api/" {
		t.Fatalf("unexpected path %q", path)
	}
}
