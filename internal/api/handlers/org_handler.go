package handlers

import (
	"encoding/json"
	"net/http"

	"recruitr/internal/api/middleware"
	"recruitr/internal/pkg/errors"
	"recruitr/internal/platform/repositories"
)

type OrgHandler struct {
	orgRepo *repositories.OrganizationRepository
}

func NewOrgHandler(orgRepo *repositories.OrganizationRepository) *OrgHandler {
	return &OrgHandler{orgRepo: orgRepo}
}

func (h *OrgHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)

	org, err := h.orgRepo.GetByID(claims.OrgID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if org == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Organization not found", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(org)
}

type UpdateOrgRequest struct {
	Name string `json:"name"`
}

func (h *OrgHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)

	var req UpdateOrgRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.Name == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Name must not be empty", nil)
		return
	}

	if err := h.orgRepo.Rename(claims.OrgID, req.Name); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	org, err := h.orgRepo.GetByID(claims.OrgID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(org)
}
