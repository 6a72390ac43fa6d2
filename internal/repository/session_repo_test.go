package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ai-chat-relay/backend/internal/db"
	"github.com/ai-chat-relay/backend/internal/model"
)

func newTestRepo(t *testing.T) *SessionRepository {
	t.Helper()
	testDB, err := db.NewTestDB()
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { testDB.Close() })
	return NewSessionRepository(testDB)
}

func newTestSession(id string) *model.Session {
	now := time.Now().UTC().Truncate(time.Second)
	return &model.Session{
		ID:         id,
		RemoteAddr: "127.0.0.1:54321",
		Status:     model.SessionStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// TestCreateAndGet verifies a created record round-trips through sqlite.
func TestCreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	sess := newTestSession("sess-1")
	if err := repo.Create(ctx, sess); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.ID != sess.ID || got.RemoteAddr != sess.RemoteAddr || got.Status != model.SessionStatusActive {
		t.Errorf("got %+v, want %+v", got, sess)
	}
	if got.ClosedAt != nil {
		t.Errorf("new session has ClosedAt = %v, want nil", got.ClosedAt)
	}
}

// TestGetMissingReturnsNotFound verifies the sentinel error for misses.
func TestGetMissingReturnsNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), "no-such-session")
	if !errors.Is(err, model.ErrSessionNotFound) {
		t.Errorf("GetByID = %v, want ErrSessionNotFound", err)
	}
}

// TestUpdateTurnsAndClose verifies the lifecycle transitions persist.
func TestUpdateTurnsAndClose(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	sess := newTestSession("sess-2")
	if err := repo.Create(ctx, sess); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.UpdateTurns(ctx, "sess-2", 3, 2); err != nil {
		t.Fatalf("UpdateTurns failed: %v", err)
	}

	closedAt := time.Now().UTC().Truncate(time.Second)
	if err := repo.Close(ctx, "sess-2", closedAt); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "sess-2")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.UserTurns != 3 || got.ModelTurns != 2 {
		t.Errorf("turn counts = %d/%d, want 3/2", got.UserTurns, got.ModelTurns)
	}
	if got.Status != model.SessionStatusClosed {
		t.Errorf("status = %q, want closed", got.Status)
	}
	if got.ClosedAt == nil {
		t.Error("ClosedAt is nil after Close")
	}
}

// TestUpdateMissingSession verifies updates against unknown IDs fail with
// the sentinel error.
func TestUpdateMissingSession(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.UpdateTurns(ctx, "ghost", 1, 1); !errors.Is(err, model.ErrSessionNotFound) {
		t.Errorf("UpdateTurns = %v, want ErrSessionNotFound", err)
	}
	if err := repo.Close(ctx, "ghost", time.Now()); !errors.Is(err, model.ErrSessionNotFound) {
		t.Errorf("Close = %v, want ErrSessionNotFound", err)
	}
}

// TestCountActive verifies only active sessions are counted.
func TestCountActive(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := repo.Create(ctx, newTestSession(id)); err != nil {
			t.Fatalf("Create %s failed: %v", id, err)
		}
	}
	if err := repo.Close(ctx, "b", time.Now()); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	count, err := repo.CountActive(ctx)
	if err != nil {
		t.Fatalf("CountActive failed: %v", err)
	}
	if count != 2 {
		t.Errorf("CountActive = %d, want 2", count)
	}
}
