package handlers

import (
	"encoding/json"
	"net/http"

	"recruitr/internal/api/middleware"
	"recruitr/internal/pkg/errors"
	"recruitr/internal/platform/models"
	"recruitr/internal/platform/repositories"
)

type UserHandler struct {
	userRepo   *repositories.UserRepository
	orgRepo    *repositories.OrganizationRepository
	memberRepo *repositories.MembershipRepository
}

func NewUserHandler(userRepo *repositories.UserRepository, orgRepo *repositories.OrganizationRepository,
	memberRepo *repositories.MembershipRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo, orgRepo: orgRepo, memberRepo: memberRepo}
}

type MeResponse struct {
	User         *models.User         `json:"user"`
	Organization *models.Organization `json:"organization"`
	Membership   *models.Membership   `json:"membership"`
}

// Me returns the caller's user record with the tenant context the credential
// was minted for.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)

	user, err := h.userRepo.GetByID(claims.UserID())
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if user == nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "User not found", nil)
		return
	}

	org, err := h.orgRepo.GetByID(claims.OrgID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	membership, err := h.memberRepo.Get(claims.UserID(), claims.OrgID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if membership == nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Membership not found", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(MeResponse{User: user, Organization: org, Membership: membership})
}
