package scan

import (
	"context"
	"time"

	"github.com/banshee-data/hydro.report/internal/water"
)

// SessionID identifies one scan.
type SessionID string

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	StatusIdle      SessionStatus = "idle"
	StatusActive    SessionStatus = "active"
	StatusCompleted SessionStatus = "completed"
	StatusFailed    SessionStatus = "failed"
	StatusCancelled SessionStatus = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s SessionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Session is the public record of one scan.
type Session struct {
	ID         SessionID     `json:"id"`
	Point      water.Point   `json:"point"`
	Status     SessionStatus `json:"status"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
	Error      string        `json:"error,omitempty"`
	// Superseded is set when a newer scan cancelled this one.
	Superseded bool `json:"superseded,omitempty"`
}

// Duration is the time from start to finish, or zero while active.
func (s Session) Duration() time.Duration {
	if s.FinishedAt == nil {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

type session struct {
	Session
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *session) finish(status SessionStatus, at time.Time, reason string) {
	s.Status = status
	s.FinishedAt = &at
	s.Error = reason
	s.cancel()
	close(s.done)
}

// history is a bounded ring of sessions, oldest first.
type history struct {
	size  int
	items []*session
}

// push appends s and returns the evicted session, if any.
func (h *history) push(s *session) *session {
	h.items = append(h.items, s)
	if len(h.items) <= h.size {
		return nil
	}
	evicted := h.items[0]
	h.items[0] = nil
	h.items = h.items[1:]
	return evicted
}

// snapshot returns copies newest first.
func (h *history) snapshot() []Session {
	out := make([]Session, 0, len(h.items))
	for i := len(h.items) - 1; i >= 0; i-- {
		out = append(out, h.items[i].Session)
	}
	return out
}
