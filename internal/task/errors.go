package task

import (
	"errors"
	"fmt"
)

// ErrNotFound means the target task does not exist (any more).
var ErrNotFound = errors.New("task not found")

// ErrRequestFailure is matched by every *RequestFailure via errors.Is.
var ErrRequestFailure = errors.New("request failed")

// RequestFailure is a transport or server-side failure of a repository call.
type RequestFailure struct {
	Op         string
	StatusCode int // 0 when the request never got a response
	Message    string
	Err        error
}

func (e *RequestFailure) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *RequestFailure) Unwrap() error { return e.Err }

func (e *RequestFailure) Is(target error) bool {
	return target == ErrRequestFailure
}
