package analysis

import (
	"errors"
	"fmt"
)

// ErrCancelled is returned when the request's context was cancelled before
// a response arrived. It is a terminal outcome distinct from failure.
var ErrCancelled = errors.New("analysis cancelled")

// ErrTimeout is returned when the request's context deadline elapsed.
var ErrTimeout = errors.New("analysis timed out")

// TransportError covers network failures and non-2xx responses.
type TransportError struct {
	StatusCode int    // 0 for network failures
	Message    string // the body's error field, or the raw body
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("analysis service returned %d: %s", e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("analysis service returned %d", e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("analysis request failed: %v", e.Err)
	default:
		return "analysis request failed"
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// ApplicationError is a 2xx response whose body carried an error field.
type ApplicationError struct {
	Message string
}

func (e *ApplicationError) Error() string {
	return "analysis failed: " + e.Message
}

// Reason returns the user-facing failure text for err.
func Reason(err error) string {
	var app *ApplicationError
	if errors.As(err, &app) {
		return app.Message
	}
	var tr *TransportError
	if errors.As(err, &tr) {
		if tr.Message != "" {
			return tr.Message
		}
		if tr.StatusCode != 0 {
			return fmt.Sprintf("server returned %d", tr.StatusCode)
		}
		if tr.Err != nil {
			return tr.Err.Error()
		}
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
