package handlers

import (
	"encoding/json"
	"net/http"

	"recruitr/internal/pkg/errors"
	"recruitr/internal/platform/models"
	"recruitr/internal/platform/repositories"
)

// SuperadminHandler exposes the cross-tenant listings. Routes using it sit
// behind the superadmin gate.
type SuperadminHandler struct {
	userRepo *repositories.UserRepository
	orgRepo  *repositories.OrganizationRepository
}

func NewSuperadminHandler(userRepo *repositories.UserRepository, orgRepo *repositories.OrganizationRepository) *SuperadminHandler {
	return &SuperadminHandler{userRepo: userRepo, orgRepo: orgRepo}
}

func (h *SuperadminHandler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.orgRepo.List()
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if orgs == nil {
		orgs = []*models.Organization{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orgs)
}

func (h *SuperadminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userRepo.List()
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if users == nil {
		users = []*models.User{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(users)
}
