package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ai-chat-relay/backend/internal/db"
	"github.com/ai-chat-relay/backend/internal/repository"
	"github.com/ai-chat-relay/backend/internal/session"
)

func setupRouter(t *testing.T) (*gin.Engine, *session.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	testDB, err := db.NewTestDB()
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { testDB.Close() })

	manager := session.NewManager(repository.NewSessionRepository(testDB))

	r := gin.New()
	api := r.Group("/api")
	NewSessionHandler(manager).RegisterRoutes(api)
	return r, manager
}

// TestListSessions verifies the session list endpoint returns records.
func TestListSessions(t *testing.T) {
	router, manager := setupRouter(t)

	if _, err := manager.Open(context.Background(), "10.0.0.1:1111"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Sessions []SessionResponse `json:"sessions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal body: %v", err)
	}
	if len(body.Sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(body.Sessions))
	}
	if body.Sessions[0].Status != "active" {
		t.Errorf("status = %q, want active", body.Sessions[0].Status)
	}
}

// TestGetSession verifies lookup by ID and the not-found envelope.
func TestGetSession(t *testing.T) {
	router, manager := setupRouter(t)

	sess, err := manager.Open(context.Background(), "10.0.0.1:1111")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+sess.ID, nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var got SessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to unmarshal body: %v", err)
	}
	if got.ID != sess.ID {
		t.Errorf("id = %q, want %q", got.ID, sess.ID)
	}

	// Unknown ID yields the error envelope.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/sessions/no-such-id", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}

	var errBody ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &errBody); err != nil {
		t.Fatalf("failed to unmarshal error body: %v", err)
	}
	if errBody.Error.Code != "SESSION_NOT_FOUND" {
		t.Errorf("error code = %q, want SESSION_NOT_FOUND", errBody.Error.Code)
	}
}
