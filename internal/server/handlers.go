package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sadopc/taskboard/internal/task"
)

const maxBodyBytes = 1 << 20

// envelope is the response body of every mutating route.
type envelope struct {
	Success bool       `json:"success"`
	Data    *task.Task `json:"data,omitempty"`
	Message string     `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, envelope{Success: false, Message: msg})
}

// fail maps a store error to a response and logs server-side failures.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, task.ErrNotFound) {
		writeErr(w, http.StatusNotFound, "Todo not found")
		return
	}
	s.log.Error("request failed", "op", op, "err", err)
	writeErr(w, http.StatusInternalServerError, err.Error())
}

func todoID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func readBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

func (s *Server) readDraft(r *http.Request) (task.Draft, error) {
	raw, err := readBody(r)
	if err != nil {
		return task.Draft{}, err
	}
	var d task.Draft
	if err := decodeValidated(s.schemas.draft, raw, &d); err != nil {
		return task.Draft{}, err
	}
	d.StartAt = d.StartAt.UTC()
	d.EndAt = d.EndAt.UTC()
	return d, nil
}

func (s *Server) readPatch(r *http.Request) (task.Patch, error) {
	raw, err := readBody(r)
	if err != nil {
		return task.Patch{}, err
	}
	var p task.Patch
	if err := decodeValidated(s.schemas.patch, raw, &p); err != nil {
		return task.Patch{}, err
	}
	if p.StartAt != nil {
		v := p.StartAt.UTC()
		p.StartAt = &v
	}
	if p.EndAt != nil {
		v := p.EndAt.UTC()
		p.EndAt = &v
	}
	return p, nil
}

func (s *Server) listTodos(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.ListTodos()
	if err != nil {
		s.fail(w, "list", err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) createTodo(w http.ResponseWriter, r *http.Request) {
	d, err := s.readDraft(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	t, err := s.store.CreateTodo(d)
	if err != nil {
		s.fail(w, "create", err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Success: true, Data: &t})
}

func (s *Server) replaceTodo(w http.ResponseWriter, r *http.Request) {
	id, err := todoID(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	d, err := s.readDraft(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	t, err := s.store.ReplaceTodo(id, d)
	if err != nil {
		s.fail(w, "replace", err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: &t})
}

func (s *Server) patchTodo(w http.ResponseWriter, r *http.Request) {
	id, err := todoID(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := s.readPatch(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	t, err := s.store.PatchTodo(id, p)
	if err != nil {
		s.fail(w, "patch", err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: &t})
}

func (s *Server) deleteTodo(w http.ResponseWriter, r *http.Request) {
	id, err := todoID(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.DeleteTodo(id); err != nil {
		s.fail(w, "delete", err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Todo deleted"})
}
