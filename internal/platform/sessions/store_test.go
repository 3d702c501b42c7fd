package sessions

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// One connection so every query sees the same in-memory database.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
	CREATE TABLE login_states (
		session_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		expires_at INTEGER NOT NULL,
		PRIMARY KEY (session_id, key)
	);
	`)
	if err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	return db
}

func TestStore_PutTake(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	if err := store.Put(ctx, "sid1", KeyOAuthState, "state-abc", time.Minute); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	value, ok, err := store.Take(ctx, "sid1", KeyOAuthState)
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	if !ok || value != "state-abc" {
		t.Errorf("expected (state-abc, true), got (%q, %v)", value, ok)
	}
}

func TestStore_TakeIsOneShot(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	if err := store.Put(ctx, "sid1", KeyPostLoginRedirect, "/jobs/42", time.Minute); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if _, ok, _ := store.Take(ctx, "sid1", KeyPostLoginRedirect); !ok {
		t.Fatal("first Take should succeed")
	}
	if _, ok, _ := store.Take(ctx, "sid1", KeyPostLoginRedirect); ok {
		t.Error("second Take should find nothing")
	}
}

func TestStore_TakeMissing(t *testing.T) {
	store := NewStore(setupTestDB(t))

	_, ok, err := store.Take(context.Background(), "unknown", KeyOAuthState)
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	if ok {
		t.Error("expected absent value for unknown session")
	}
}

func TestStore_ExpiredIsAbsent(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	if err := store.Put(ctx, "sid1", KeyOAuthState, "stale", -time.Minute); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if _, ok, _ := store.Take(ctx, "sid1", KeyOAuthState); ok {
		t.Error("expired value should be treated as absent")
	}
}

func TestStore_PutReplaces(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	if err := store.Put(ctx, "sid1", KeyOAuthState, "first", time.Minute); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put(ctx, "sid1", KeyOAuthState, "second", time.Minute); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	value, ok, err := store.Take(ctx, "sid1", KeyOAuthState)
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	if !ok || value != "second" {
		t.Errorf("expected replaced value, got (%q, %v)", value, ok)
	}
}

func TestStore_PurgeExpired(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	store.Put(ctx, "sid1", KeyOAuthState, "stale", -time.Minute)
	store.Put(ctx, "sid2", KeyOAuthState, "fresh", time.Minute)

	n, err := store.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 purged row, got %d", n)
	}

	if _, ok, _ := store.Take(ctx, "sid2", KeyOAuthState); !ok {
		t.Error("fresh value should survive the purge")
	}
}
