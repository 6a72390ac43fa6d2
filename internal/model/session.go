package model

import "time"

// SessionStatus represents the lifecycle state of a chat session.
type SessionStatus string

const (
	SessionStatusActive SessionStatus = "active"
	SessionStatusClosed SessionStatus = "closed"
)

// Session is the metadata record for one client connection. Conversation
// content lives only in the in-memory turn log and dies with the
// connection; this record carries the operator-visible lifecycle data.
type Session struct {
	ID         string        `json:"id"`
	RemoteAddr string        `json:"remoteAddr"`
	Status     SessionStatus `json:"status"`
	UserTurns  int           `json:"userTurns"`
	ModelTurns int           `json:"modelTurns"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
	ClosedAt   *time.Time    `json:"closedAt,omitempty"`
}

// Duration returns how long the session has been (or was) alive.
func (s *Session) Duration() time.Duration {
	if s.ClosedAt != nil {
		return s.ClosedAt.Sub(s.CreatedAt)
	}
	return time.Since(s.CreatedAt)
}
