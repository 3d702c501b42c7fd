package repositories

import (
	"database/sql"
	"time"

	"recruitr/internal/platform/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) BeginTx() (*sql.Tx, error) {
	return r.db.Begin()
}

func (r *UserRepository) CreateTx(tx *sql.Tx, user *models.User) error {
	_, err := tx.Exec(`
		INSERT INTO users (id, email, full_name, avatar_url, is_superadmin, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.Email, user.FullName, user.AvatarURL, user.IsSuperadmin, user.CreatedAt, user.UpdatedAt)
	return err
}

func (r *UserRepository) GetByID(id string) (*models.User, error) {
	return scanUser(r.db.QueryRow(`
		SELECT id, email, full_name, avatar_url, is_superadmin, created_at, updated_at
		FROM users WHERE id = ?
	`, id))
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	return scanUser(r.db.QueryRow(`
		SELECT id, email, full_name, avatar_url, is_superadmin, created_at, updated_at
		FROM users WHERE email = ?
	`, email))
}

func (r *UserRepository) GetByEmailTx(tx *sql.Tx, email string) (*models.User, error) {
	return scanUser(tx.QueryRow(`
		SELECT id, email, full_name, avatar_url, is_superadmin, created_at, updated_at
		FROM users WHERE email = ?
	`, email))
}

func (r *UserRepository) List() ([]*models.User, error) {
	rows, err := r.db.Query(`
		SELECT id, email, full_name, avatar_url, is_superadmin, created_at, updated_at
		FROM users ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.Email, &user.FullName, &user.AvatarURL,
			&user.IsSuperadmin, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Email, &user.FullName, &user.AvatarURL,
		&user.IsSuperadmin, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

type OrganizationRepository struct {
	db *sql.DB
}

func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) CreateTx(tx *sql.Tx, org *models.Organization) error {
	_, err := tx.Exec(`
		INSERT INTO organizations (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, org.ID, org.Name, org.CreatedAt, org.UpdatedAt)
	return err
}

func (r *OrganizationRepository) GetByID(id string) (*models.Organization, error) {
	return scanOrg(r.db.QueryRow(`
		SELECT id, name, created_at, updated_at FROM organizations WHERE id = ?
	`, id))
}

func (r *OrganizationRepository) GetByIDTx(tx *sql.Tx, id string) (*models.Organization, error) {
	return scanOrg(tx.QueryRow(`
		SELECT id, name, created_at, updated_at FROM organizations WHERE id = ?
	`, id))
}

func (r *OrganizationRepository) Rename(id, name string) error {
	_, err := r.db.Exec(`
		UPDATE organizations SET name = ?, updated_at = ? WHERE id = ?
	`, name, time.Now().Unix(), id)
	return err
}

func (r *OrganizationRepository) List() ([]*models.Organization, error) {
	rows, err := r.db.Query(`
		SELECT id, name, created_at, updated_at FROM organizations ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []*models.Organization
	for rows.Next() {
		org := &models.Organization{}
		if err := rows.Scan(&org.ID, &org.Name, &org.CreatedAt, &org.UpdatedAt); err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

func scanOrg(row rowScanner) (*models.Organization, error) {
	org := &models.Organization{}
	err := row.Scan(&org.ID, &org.Name, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return org, nil
}

type MembershipRepository struct {
	db *sql.DB
}

func NewMembershipRepository(db *sql.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// UpsertTx inserts a membership, leaving an existing (user, org) row
// untouched so a re-login never changes a role. The UNIQUE(user_id, org_id)
// constraint carries the race under concurrent callbacks.
func (r *MembershipRepository) UpsertTx(tx *sql.Tx, m *models.Membership) error {
	_, err := tx.Exec(`
		INSERT INTO memberships (id, user_id, org_id, role, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, org_id) DO NOTHING
	`, m.ID, m.UserID, m.OrgID, m.Role, m.CreatedAt)
	return err
}

func (r *MembershipRepository) GetTx(tx *sql.Tx, userID, orgID string) (*models.Membership, error) {
	return scanMembership(tx.QueryRow(`
		SELECT id, user_id, org_id, role, created_at
		FROM memberships WHERE user_id = ? AND org_id = ?
	`, userID, orgID))
}

func (r *MembershipRepository) Get(userID, orgID string) (*models.Membership, error) {
	return scanMembership(r.db.QueryRow(`
		SELECT id, user_id, org_id, role, created_at
		FROM memberships WHERE user_id = ? AND org_id = ?
	`, userID, orgID))
}

func scanMembership(row rowScanner) (*models.Membership, error) {
	m := &models.Membership{}
	err := row.Scan(&m.ID, &m.UserID, &m.OrgID, &m.Role, &m.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

type InvitationRepository struct {
	db *sql.DB
}

func NewInvitationRepository(db *sql.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

func (r *InvitationRepository) Create(inv *models.Invitation) error {
	_, err := r.db.Exec(`
		INSERT INTO invitations (id, email, org_id, org_name, role, status, invited_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, inv.ID, inv.Email, nullable(inv.OrgID), nullable(inv.OrgName), inv.Role, inv.Status, nullable(inv.InvitedBy), inv.CreatedAt)
	return err
}

// GetPendingByEmailTx returns the oldest unconsumed invitation for an email,
// or nil when none exists.
func (r *InvitationRepository) GetPendingByEmailTx(tx *sql.Tx, email string) (*models.Invitation, error) {
	return scanInvitation(tx.QueryRow(`
		SELECT id, email, org_id, org_name, role, status, invited_by, created_at, consumed_at
		FROM invitations WHERE email = ? AND status = ?
		ORDER BY created_at LIMIT 1
	`, email, models.InvitationPending))
}

// ConsumeTx marks a pending invitation consumed. Returns false when the row
// was no longer pending, which means a raced callback got there first.
func (r *InvitationRepository) ConsumeTx(tx *sql.Tx, id string, at int64) (bool, error) {
	res, err := tx.Exec(`
		UPDATE invitations SET status = ?, consumed_at = ?
		WHERE id = ? AND status = ?
	`, models.InvitationConsumed, at, id, models.InvitationPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *InvitationRepository) Get(id string) (*models.Invitation, error) {
	return scanInvitation(r.db.QueryRow(`
		SELECT id, email, org_id, org_name, role, status, invited_by, created_at, consumed_at
		FROM invitations WHERE id = ?
	`, id))
}

func (r *InvitationRepository) ListByOrg(orgID string) ([]*models.Invitation, error) {
	rows, err := r.db.Query(`
		SELECT id, email, org_id, org_name, role, status, invited_by, created_at, consumed_at
		FROM invitations WHERE org_id = ? ORDER BY created_at DESC
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invs []*models.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

func (r *InvitationRepository) Revoke(id, orgID string) (bool, error) {
	res, err := r.db.Exec(`
		UPDATE invitations SET status = ?
		WHERE id = ? AND org_id = ? AND status = ?
	`, models.InvitationRevoked, id, orgID, models.InvitationPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func scanInvitation(row rowScanner) (*models.Invitation, error) {
	inv := &models.Invitation{}
	var orgID, orgName, invitedBy sql.NullString
	var consumedAt sql.NullInt64
	err := row.Scan(&inv.ID, &inv.Email, &orgID, &orgName, &inv.Role, &inv.Status,
		&invitedBy, &inv.CreatedAt, &consumedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	inv.OrgID = orgID.String
	inv.OrgName = orgName.String
	inv.InvitedBy = invitedBy.String
	if consumedAt.Valid {
		inv.ConsumedAt = &consumedAt.Int64
	}
	return inv, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
