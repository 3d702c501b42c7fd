// Package provisioning resolves an externally verified identity to a local
// user, organization, and membership. Access is invitation-gated: a sign-in
// with no pending invitation is rejected outright rather than silently
// creating an orphan account.
package provisioning

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"recruitr/internal/pkg/validator"
	"recruitr/internal/platform/models"
	"recruitr/internal/platform/repositories"
)

// ErrNoValidInvitation means the email has no pending invitation. Expected
// business condition, not a server fault.
var ErrNoValidInvitation = errors.New("provisioning: no valid invitation for email")

type Result struct {
	User         *models.User
	Organization *models.Organization
	Membership   *models.Membership
}

type Service struct {
	db         *sql.DB
	userRepo   *repositories.UserRepository
	orgRepo    *repositories.OrganizationRepository
	memberRepo *repositories.MembershipRepository
	inviteRepo *repositories.InvitationRepository
}

func NewService(db *sql.DB, userRepo *repositories.UserRepository, orgRepo *repositories.OrganizationRepository,
	memberRepo *repositories.MembershipRepository, inviteRepo *repositories.InvitationRepository) *Service {
	return &Service{
		db:         db,
		userRepo:   userRepo,
		orgRepo:    orgRepo,
		memberRepo: memberRepo,
		inviteRepo: inviteRepo,
	}
}

// Provision runs the whole sequence in one transaction: find-or-create the
// user, require a pending invitation, resolve or create its organization,
// upsert the membership with the invited role, and consume the invitation.
// Any failure rolls back every row.
func (s *Service) Provision(ctx context.Context, email, name, avatarURL string) (*Result, error) {
	email, err := validator.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now().Unix()

	user, err := s.userRepo.GetByEmailTx(tx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &models.User{
			ID:        "usr_" + uuid.NewString(),
			Email:     email,
			FullName:  name,
			AvatarURL: avatarURL,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.userRepo.CreateTx(tx, user); err != nil {
			return nil, err
		}
	}

	invite, err := s.inviteRepo.GetPendingByEmailTx(tx, email)
	if err != nil {
		return nil, err
	}
	if invite == nil {
		return nil, ErrNoValidInvitation
	}

	var org *models.Organization
	if invite.OrgID != "" {
		org, err = s.orgRepo.GetByIDTx(tx, invite.OrgID)
		if err != nil {
			return nil, err
		}
		if org == nil {
			return nil, fmt.Errorf("invitation %s references missing organization %s", invite.ID, invite.OrgID)
		}
	} else {
		// The invitation establishes a new tenant.
		org = &models.Organization{
			ID:        "org_" + uuid.NewString(),
			Name:      invite.OrgName,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.orgRepo.CreateTx(tx, org); err != nil {
			return nil, err
		}
	}

	// No-op when the membership already exists, so a re-login can never
	// change a previously assigned role.
	if err := s.memberRepo.UpsertTx(tx, &models.Membership{
		ID:        "mem_" + uuid.NewString(),
		UserID:    user.ID,
		OrgID:     org.ID,
		Role:      invite.Role,
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	membership, err := s.memberRepo.GetTx(tx, user.ID, org.ID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, fmt.Errorf("membership upsert for user %s in org %s left no row", user.ID, org.ID)
	}

	consumed, err := s.inviteRepo.ConsumeTx(tx, invite.ID, now)
	if err != nil {
		return nil, err
	}
	if !consumed {
		// A raced callback consumed it between lookup and update.
		return nil, ErrNoValidInvitation
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &Result{User: user, Organization: org, Membership: membership}, nil
}
