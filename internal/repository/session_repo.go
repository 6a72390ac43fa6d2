// Package repository provides data access for chat session records.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ai-chat-relay/backend/internal/model"
)

// SessionRepository provides data access for session metadata.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session record.
func (r *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	query := `
		INSERT INTO sessions (id, remote_addr, status, user_turns, model_turns, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.RemoteAddr,
		session.Status,
		session.UserTurns,
		session.ModelTurns,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetByID retrieves a session record by its ID.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*model.Session, error) {
	query := `
		SELECT id, remote_addr, status, user_turns, model_turns, created_at, updated_at, closed_at
		FROM sessions
		WHERE id = ?
	`

	session := &model.Session{}
	var closedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.RemoteAddr,
		&session.Status,
		&session.UserTurns,
		&session.ModelTurns,
		&session.CreatedAt,
		&session.UpdatedAt,
		&closedAt,
	)
	if err == sql.ErrNoRows {
		return nil, model.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if closedAt.Valid {
		t := closedAt.Time
		session.ClosedAt = &t
	}

	return session, nil
}

// List retrieves all session records, newest first.
func (r *SessionRepository) List(ctx context.Context) ([]*model.Session, error) {
	query := `
		SELECT id, remote_addr, status, user_turns, model_turns, created_at, updated_at, closed_at
		FROM sessions
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*model.Session
	for rows.Next() {
		session := &model.Session{}
		var closedAt sql.NullTime

		err := rows.Scan(
			&session.ID,
			&session.RemoteAddr,
			&session.Status,
			&session.UserTurns,
			&session.ModelTurns,
			&session.CreatedAt,
			&session.UpdatedAt,
			&closedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		if closedAt.Valid {
			t := closedAt.Time
			session.ClosedAt = &t
		}

		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return sessions, nil
}

// UpdateTurns updates the turn counters of a session.
func (r *SessionRepository) UpdateTurns(ctx context.Context, id string, userTurns, modelTurns int) error {
	query := `
		UPDATE sessions
		SET user_turns = ?, model_turns = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, userTurns, modelTurns, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update session turns: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return model.ErrSessionNotFound
	}

	return nil
}

// Close marks a session record as closed.
func (r *SessionRepository) Close(ctx context.Context, id string, closedAt time.Time) error {
	query := `
		UPDATE sessions
		SET status = ?, closed_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, model.SessionStatusClosed, closedAt, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return model.ErrSessionNotFound
	}

	return nil
}

// CountActive returns the number of active sessions.
func (r *SessionRepository) CountActive(ctx context.Context) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM sessions
		WHERE status = ?
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, model.SessionStatusActive).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active sessions: %w", err)
	}

	return count, nil
}
