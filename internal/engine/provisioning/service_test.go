package provisioning

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"recruitr/internal/platform/models"
	"recruitr/internal/platform/repositories"
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

	schema := `
	CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE COLLATE NOCASE,
		full_name TEXT NOT NULL DEFAULT '',
		avatar_url TEXT NOT NULL DEFAULT '',
		is_superadmin INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE organizations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE memberships (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		org_id TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		UNIQUE (user_id, org_id)
	);
	CREATE TABLE invitations (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL COLLATE NOCASE,
		org_id TEXT,
		org_name TEXT,
		role TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		invited_by TEXT,
		created_at INTEGER NOT NULL,
		consumed_at INTEGER
	);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return db
}

func newTestService(db *sql.DB) *Service {
	return NewService(db,
		repositories.NewUserRepository(db),
		repositories.NewOrganizationRepository(db),
		repositories.NewMembershipRepository(db),
		repositories.NewInvitationRepository(db),
	)
}

func insertInvite(t *testing.T, db *sql.DB, inv *models.Invitation) {
	t.Helper()
	if inv.Status == "" {
		inv.Status = models.InvitationPending
	}
	if inv.CreatedAt == 0 {
		inv.CreatedAt = time.Now().Unix()
	}
	if err := repositories.NewInvitationRepository(db).Create(inv); err != nil {
		t.Fatalf("Failed to insert invitation: %v", err)
	}
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

func TestProvision_NoInvitation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)

	_, err := svc.Provision(context.Background(), "nobody@example.com", "Nobody", "")
	if !errors.Is(err, ErrNoValidInvitation) {
		t.Fatalf("expected ErrNoValidInvitation, got %v", err)
	}

	// The whole transaction must roll back: no partial user row either.
	if n := countRows(t, db, "users"); n != 0 {
		t.Errorf("expected 0 users after rollback, got %d", n)
	}
	if n := countRows(t, db, "memberships"); n != 0 {
		t.Errorf("expected 0 memberships, got %d", n)
	}
}

func TestProvision_NewTenantInvitation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)

	insertInvite(t, db, &models.Invitation{
		ID: "inv_1", Email: "alice@example.com", OrgName: "Acme Recruiting", Role: models.RoleAdmin,
	})

	res, err := svc.Provision(context.Background(), "alice@example.com", "Alice", "https://avatar/a.png")
	if err != nil {
		t.Fatalf("Provision failed: %v", err)
	}

	if res.User.Email != "alice@example.com" {
		t.Errorf("unexpected email %s", res.User.Email)
	}
	if res.Organization.Name != "Acme Recruiting" {
		t.Errorf("expected new org from invitation, got %q", res.Organization.Name)
	}
	if res.Membership.Role != models.RoleAdmin {
		t.Errorf("expected invited role admin, got %s", res.Membership.Role)
	}

	inv, err := repositories.NewInvitationRepository(db).Get("inv_1")
	if err != nil || inv == nil {
		t.Fatalf("failed to reload invitation: %v", err)
	}
	if inv.Status != models.InvitationConsumed || inv.ConsumedAt == nil {
		t.Errorf("expected invitation consumed, got status=%s", inv.Status)
	}
}

func TestProvision_ExistingOrgInvitation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)

	db.Exec(`INSERT INTO organizations (id, name, created_at, updated_at) VALUES ('org_1', 'Acme', 1, 1)`)
	insertInvite(t, db, &models.Invitation{
		ID: "inv_1", Email: "bob@example.com", OrgID: "org_1", Role: models.RoleMember,
	})

	res, err := svc.Provision(context.Background(), "bob@example.com", "Bob", "")
	if err != nil {
		t.Fatalf("Provision failed: %v", err)
	}
	if res.Organization.ID != "org_1" {
		t.Errorf("expected existing org org_1, got %s", res.Organization.ID)
	}
	if n := countRows(t, db, "organizations"); n != 1 {
		t.Errorf("expected no new org, found %d rows", n)
	}
}

func TestProvision_ConsumedInvitationFailsCleanly(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)

	insertInvite(t, db, &models.Invitation{
		ID: "inv_1", Email: "carol@example.com", OrgName: "Acme", Role: models.RoleMember,
	})

	if _, err := svc.Provision(context.Background(), "carol@example.com", "Carol", ""); err != nil {
		t.Fatalf("first Provision failed: %v", err)
	}

	_, err := svc.Provision(context.Background(), "carol@example.com", "Carol", "")
	if !errors.Is(err, ErrNoValidInvitation) {
		t.Fatalf("expected ErrNoValidInvitation on replay, got %v", err)
	}

	if n := countRows(t, db, "memberships"); n != 1 {
		t.Errorf("expected exactly 1 membership after replay, got %d", n)
	}
}

func TestProvision_ReloginKeepsRole(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)

	db.Exec(`INSERT INTO organizations (id, name, created_at, updated_at) VALUES ('org_1', 'Acme', 1, 1)`)
	insertInvite(t, db, &models.Invitation{
		ID: "inv_1", Email: "dave@example.com", OrgID: "org_1", Role: models.RoleMember, CreatedAt: 1,
	})
	insertInvite(t, db, &models.Invitation{
		ID: "inv_2", Email: "dave@example.com", OrgID: "org_1", Role: models.RoleAdmin, CreatedAt: 2,
	})

	first, err := svc.Provision(context.Background(), "dave@example.com", "Dave", "")
	if err != nil {
		t.Fatalf("first Provision failed: %v", err)
	}
	if first.Membership.Role != models.RoleMember {
		t.Fatalf("expected member role first, got %s", first.Membership.Role)
	}

	// Second login consumes the admin invite but must not escalate the
	// existing membership.
	second, err := svc.Provision(context.Background(), "dave@example.com", "Dave", "")
	if err != nil {
		t.Fatalf("second Provision failed: %v", err)
	}
	if second.Membership.Role != models.RoleMember {
		t.Errorf("re-login silently changed role to %s", second.Membership.Role)
	}
	if n := countRows(t, db, "memberships"); n != 1 {
		t.Errorf("expected 1 membership, got %d", n)
	}
}

func TestProvision_EmailCaseFolded(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)

	insertInvite(t, db, &models.Invitation{
		ID: "inv_1", Email: "eve@example.com", OrgName: "Acme", Role: models.RoleMember,
	})

	res, err := svc.Provision(context.Background(), "Eve@Example.COM", "Eve", "")
	if err != nil {
		t.Fatalf("Provision failed: %v", err)
	}
	if res.User.Email != "eve@example.com" {
		t.Errorf("expected folded email, got %s", res.User.Email)
	}
}
