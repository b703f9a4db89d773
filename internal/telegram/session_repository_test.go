package telegram

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"fitplanner/internal/database"
)

func newTestSessionRepo(t *testing.T) *SessionRepository {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSessionRepository(db.SQL)
}

func TestSessionLifecycle(t *testing.T) {
	repo := newTestSessionRepo(t)
	ctx := context.Background()

	data := SessionContextData{PlanID: "plan-abc", OriginalRequest: "high protein week"}
	id, err := repo.Create(ctx, "user-1", "plan_review", "awaiting_feedback", data, 3600)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if id == 0 {
		t.Fatal("Expected a non-zero session ID")
	}

	session, err := repo.GetActive(ctx, "user-1", time.Now())
	if err != nil {
		t.Fatalf("GetActive failed: %v", err)
	}
	if session == nil {
		t.Fatal("Expected an active session")
	}
	if session.SessionType != "plan_review" {
		t.Errorf("Expected session type plan_review, got %q", session.SessionType)
	}

	got, err := session.GetContextData()
	if err != nil {
		t.Fatalf("GetContextData failed: %v", err)
	}
	if got.OriginalRequest != "high protein week" {
		t.Errorf("Expected original request to round-trip, got %q", got.OriginalRequest)
	}
	if got.PlanID != "plan-abc" {
		t.Errorf("Expected plan ID plan-abc, got %q", got.PlanID)
	}

	if err := repo.Delete(ctx, session.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	session, err = repo.GetActive(ctx, "user-1", time.Now())
	if err != nil {
		t.Fatalf("GetActive after delete failed: %v", err)
	}
	if session != nil {
		t.Error("Expected no active session after delete")
	}
}

func TestSessionExpiry(t *testing.T) {
	repo := newTestSessionRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "user-1", "plan_review", "awaiting_feedback", SessionContextData{}, 3600)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Querying past the TTL must not return the session
	session, err := repo.GetActive(ctx, "user-1", time.Now().Add(2*time.Hour))
	if err != nil {
		t.Fatalf("GetActive failed: %v", err)
	}
	if session != nil {
		t.Error("Expected expired session to be filtered out")
	}
}

func TestCleanupExpiredRemovesOnlyExpired(t *testing.T) {
	repo := newTestSessionRepo(t)
	ctx := context.Background()

	if _, err := repo.Create(ctx, "user-1", "plan_review", "awaiting_feedback", SessionContextData{}, -60); err != nil {
		t.Fatalf("Create expired session failed: %v", err)
	}
	if _, err := repo.Create(ctx, "user-2", "plan_review", "awaiting_feedback", SessionContextData{}, 3600); err != nil {
		t.Fatalf("Create live session failed: %v", err)
	}

	if err := repo.CleanupExpired(ctx); err != nil {
		t.Fatalf("CleanupExpired failed: %v", err)
	}

	var count int
	if err := repo.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&count); err != nil {
		t.Fatalf("Count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 remaining session, got %d", count)
	}

	live, err := repo.GetActive(ctx, "user-2", time.Now())
	if err != nil {
		t.Fatalf("GetActive failed: %v", err)
	}
	if live == nil {
		t.Error("Expected the live session to survive cleanup")
	}
}

func TestSessionIsolatedByUser(t *testing.T) {
	repo := newTestSessionRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "user-1", "plan_review", "awaiting_feedback", SessionContextData{}, 3600)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	session, err := repo.GetActive(ctx, "user-2", time.Now())
	if err != nil {
		t.Fatalf("GetActive failed: %v", err)
	}
	if session != nil {
		t.Error("Expected no session for a different user")
	}
}
