package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"recruitr/internal/api/middleware"
	"recruitr/internal/pkg/errors"
	"recruitr/internal/pkg/validator"
	"recruitr/internal/platform/models"
	"recruitr/internal/platform/repositories"
)

type InviteHandler struct {
	inviteRepo *repositories.InvitationRepository
}

func NewInviteHandler(inviteRepo *repositories.InvitationRepository) *InviteHandler {
	return &InviteHandler{inviteRepo: inviteRepo}
}

type CreateInviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Create issues an invitation into the caller's own organization. Inviting
// into a brand-new tenant is a superadmin operation, not exposed here.
func (h *InviteHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)

	var req CreateInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	email, err := validator.NormalizeEmail(req.Email)
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid email address", nil)
		return
	}
	if req.Role != models.RoleAdmin && req.Role != models.RoleMember {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Role must be admin or member", nil)
		return
	}

	invite := &models.Invitation{
		ID:        "inv_" + uuid.NewString(),
		Email:     email,
		OrgID:     claims.OrgID,
		Role:      req.Role,
		Status:    models.InvitationPending,
		InvitedBy: claims.UserID(),
		CreatedAt: time.Now().Unix(),
	}

	if err := h.inviteRepo.Create(invite); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create invitation", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(invite)
}

func (h *InviteHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)

	invites, err := h.inviteRepo.ListByOrg(claims.OrgID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if invites == nil {
		invites = []*models.Invitation{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(invites)
}

func (h *InviteHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)
	inviteID := middleware.Param(r, "invite_id")

	revoked, err := h.inviteRepo.Revoke(inviteID, claims.OrgID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if !revoked {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "No pending invitation found", nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
