// Package chat holds the per-connection conversation state.
package chat

import (
	"sync"

	"github.com/ai-chat-relay/backend/internal/model"
)

// Log is the ordered, append-only turn sequence for one connection.
//
// Its length is monotonically non-decreasing for the life of the
// connection and prior entries are never modified. There is no
// deduplication, truncation, or size cap. The log is created empty when
// a connection opens and discarded when it closes.
type Log struct {
	mu    sync.RWMutex
	turns []model.Turn
}

// NewLog creates an empty conversation log.
func NewLog() *Log {
	return &Log{}
}

// AppendUser appends a user turn. Empty content is rejected with
// model.ErrInvalidTurn and the log is left unchanged.
func (l *Log) AppendUser(content string) error {
	return l.append(model.RoleUser, content)
}

// AppendModel appends a model turn. Empty content is rejected with
// model.ErrInvalidTurn and the log is left unchanged.
func (l *Log) AppendModel(content string) error {
	return l.append(model.RoleModel, content)
}

func (l *Log) append(role model.Role, content string) error {
	if content == "" {
		return model.ErrInvalidTurn
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = append(l.turns, model.Turn{Role: role, Content: content})
	return nil
}

// Turns returns the full sequence in insertion order, consistent with the
// last completed append. The returned slice is a copy and safe to hand to
// the backend gateway while further appends happen.
func (l *Log) Turns() []model.Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()

	turns := make([]model.Turn, len(l.turns))
	copy(turns, l.turns)
	return turns
}

// Len returns the number of turns in the log.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}
