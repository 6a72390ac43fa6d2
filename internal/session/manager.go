// Package session manages chat session metadata over its lifecycle.
package session

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/ai-chat-relay/backend/internal/model"
	"github.com/ai-chat-relay/backend/internal/repository"
)

// Manager creates, updates, and closes session records. It tracks
// metadata only; conversation content lives in the per-connection log and
// is never persisted.
type Manager struct {
	repo *repository.SessionRepository
}

// NewManager creates a new session manager.
func NewManager(repo *repository.SessionRepository) *Manager {
	return &Manager{repo: repo}
}

// Open creates a new active session record for a connection.
func (m *Manager) Open(ctx context.Context, remoteAddr string) (*model.Session, error) {
	now := time.Now()
	session := &model.Session{
		ID:         uuid.New().String(),
		RemoteAddr: remoteAddr,
		Status:     model.SessionStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := m.repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	log.Printf("session %s: opened for %s", session.ID, remoteAddr)
	return session, nil
}

// RecordTurns stores the current turn counters for a session.
func (m *Manager) RecordTurns(ctx context.Context, id string, userTurns, modelTurns int) error {
	return m.repo.UpdateTurns(ctx, id, userTurns, modelTurns)
}

// CloseSession marks a session as closed on disconnect.
func (m *Manager) CloseSession(ctx context.Context, id string) error {
	if err := m.repo.Close(ctx, id, time.Now()); err != nil {
		return err
	}
	log.Printf("session %s: closed", id)
	return nil
}

// Get retrieves a session record by ID.
func (m *Manager) Get(ctx context.Context, id string) (*model.Session, error) {
	return m.repo.GetByID(ctx, id)
}

// List retrieves all session records, newest first.
func (m *Manager) List(ctx context.Context) ([]*model.Session, error) {
	return m.repo.List(ctx)
}

// ActiveCount returns the number of currently active sessions.
func (m *Manager) ActiveCount(ctx context.Context) (int, error) {
	return m.repo.CountActive(ctx)
}
