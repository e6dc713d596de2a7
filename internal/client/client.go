// Package client talks to the todo service over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/taskboard/internal/task"
)

// Client is a single-attempt repository over the /api routes. Every call
// returns task.ErrNotFound for a 404 and a *task.RequestFailure for any
// other failure.
type Client struct {
	base string
	http *http.Client
}

// New builds a client rooted at baseURL (for example
// http://localhost:3000/api). A zero timeout means none.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// NewWithHTTPClient is New with a caller-supplied transport.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{base: strings.TrimRight(baseURL, "/"), http: hc}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (c *Client) List(ctx context.Context) ([]task.Task, error) {
	var tasks []task.Task
	if err := c.do(ctx, "list", http.MethodGet, "/", nil, func(body []byte) error {
		return json.Unmarshal(body, &tasks)
	}); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return tasks, nil
}

func (c *Client) Create(ctx context.Context, d task.Draft) (task.Task, error) {
	return c.send(ctx, "create", http.MethodPost, "/", d)
}

func (c *Client) Replace(ctx context.Context, id int64, d task.Draft) (task.Task, error) {
	return c.send(ctx, "replace", http.MethodPut, idPath(id), d)
}

func (c *Client) Patch(ctx context.Context, id int64, p task.Patch) (task.Task, error) {
	return c.send(ctx, "patch", http.MethodPatch, idPath(id), p)
}

func (c *Client) Remove(ctx context.Context, id int64) error {
	return c.do(ctx, "remove", http.MethodDelete, idPath(id), nil, func(body []byte) error {
		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return err
		}
		if !env.Success {
			return errors.New(env.Message)
		}
		return nil
	})
}

func idPath(id int64) string {
	return "/" + strconv.FormatInt(id, 10)
}

// send posts payload and unwraps the {success, data} envelope.
func (c *Client) send(ctx context.Context, op, method, path string, payload any) (task.Task, error) {
	var out task.Task
	err := c.do(ctx, op, method, path, payload, func(body []byte) error {
		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return err
		}
		if !env.Success || len(env.Data) == 0 {
			if env.Message != "" {
				return errors.New(env.Message)
			}
			return errors.New("response carried no data")
		}
		return json.Unmarshal(env.Data, &out)
	})
	return out, err
}

func (c *Client) do(ctx context.Context, op, method, path string, payload any, decode func([]byte) error) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return &task.RequestFailure{Op: op, Err: fmt.Errorf("encode body: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return &task.RequestFailure{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &task.RequestFailure{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &task.RequestFailure{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, task.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &task.RequestFailure{Op: op, StatusCode: resp.StatusCode, Message: serverMessage(data, resp.Status)}
	}
	if err := decode(data); err != nil {
		return &task.RequestFailure{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func serverMessage(body []byte, fallback string) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		return env.Message
	}
	return fallback
}
