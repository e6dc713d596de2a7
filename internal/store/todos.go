package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/taskboard/internal/task"
)

const todoColumns = `id, text, description, status, start_at, end_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(r rowScanner) (task.Task, error) {
	var t task.Task
	var status, startAt, endAt string
	if err := r.Scan(&t.ID, &t.Text, &t.Description, &status, &startAt, &endAt); err != nil {
		return task.Task{}, err
	}
	t.Status = task.Status(status)
	t.StartAt, _ = time.Parse(time.RFC3339, startAt)
	t.EndAt, _ = time.Parse(time.RFC3339, endAt)
	return t, nil
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ListTodos returns every todo in insertion order.
func (s *Store) ListTodos() ([]task.Task, error) {
	rows, err := s.db.Query(`SELECT ` + todoColumns + ` FROM todos ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	tasks := []task.Task{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) GetTodo(id int64) (task.Task, error) {
	t, err := scanTodo(s.db.QueryRow(`SELECT `+todoColumns+` FROM todos WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return task.Task{}, fmt.Errorf("get todo %d: %w", id, task.ErrNotFound)
	}
	if err != nil {
		return task.Task{}, fmt.Errorf("get todo %d: %w", id, err)
	}
	return t, nil
}

func (s *Store) CreateTodo(d task.Draft) (task.Task, error) {
	res, err := s.db.Exec(
		`INSERT INTO todos (text, description, status, start_at, end_at) VALUES (?, ?, ?, ?, ?)`,
		d.Text, d.Description, string(d.Status), stamp(d.StartAt), stamp(d.EndAt),
	)
	if err != nil {
		return task.Task{}, fmt.Errorf("insert todo: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return task.Task{}, fmt.Errorf("insert todo: %w", err)
	}
	return s.GetTodo(id)
}

// ReplaceTodo overwrites every field of todo id.
func (s *Store) ReplaceTodo(id int64, d task.Draft) (task.Task, error) {
	res, err := s.db.Exec(
		`UPDATE todos SET text = ?, description = ?, status = ?, start_at = ?, end_at = ? WHERE id = ?`,
		d.Text, d.Description, string(d.Status), stamp(d.StartAt), stamp(d.EndAt), id,
	)
	if err != nil {
		return task.Task{}, fmt.Errorf("replace todo %d: %w", id, err)
	}
	if err := affected(res, "replace", id); err != nil {
		return task.Task{}, err
	}
	return s.GetTodo(id)
}

// PatchTodo applies the set fields of p to todo id.
func (s *Store) PatchTodo(id int64, p task.Patch) (task.Task, error) {
	cur, err := s.GetTodo(id)
	if err != nil {
		return task.Task{}, err
	}
	if p.Empty() {
		return cur, nil
	}
	return s.ReplaceTodo(id, p.Apply(cur).Draft())
}

func (s *Store) DeleteTodo(id int64) error {
	res, err := s.db.Exec(`DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete todo %d: %w", id, err)
	}
	return affected(res, "delete", id)
}

func affected(res sql.Result, op string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s todo %d: %w", op, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s todo %d: %w", op, id, task.ErrNotFound)
	}
	return nil
}
