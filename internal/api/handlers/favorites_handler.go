package handlers

import (
	"encoding/json"
	"net/http"

	"recruitr/internal/api/middleware"
	"recruitr/internal/pkg/errors"
	"recruitr/internal/platform/models"
	"recruitr/internal/platform/repositories"
)

type FavoritesHandler struct {
	candidateRepo *repositories.CandidateRepository
}

func NewFavoritesHandler(candidateRepo *repositories.CandidateRepository) *FavoritesHandler {
	return &FavoritesHandler{candidateRepo: candidateRepo}
}

type FavoriteToggleRequest struct {
	CandidateID string `json:"candidate_id"`
	Source      string `json:"source"`
	Favorite    bool   `json:"favorite"`
}

func (h *FavoritesHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)

	var req FavoriteToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.Source != models.CandidateSourceSearch && req.Source != models.CandidateSourceResume {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Unknown candidate source", nil)
		return
	}

	updated, err := h.candidateRepo.SetFavorite(req.Source, req.CandidateID, claims.OrgID, req.Favorite)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error while toggling favorite", nil)
		return
	}
	if !updated {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Candidate not found in "+req.Source, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"candidate_id": req.CandidateID,
		"favorite":     req.Favorite,
	})
}

type FavoritesResponse struct {
	JDID      string                               `json:"jd_id"`
	Favorites map[string][]*models.RankedCandidate `json:"favorites"`
}

// ListForJD returns the favorited candidates from both ranked tables for one
// job description, scoped to the caller's org.
func (h *FavoritesHandler) ListForJD(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)
	jdID := middleware.Param(r, "jd_id")

	fromSearch, err := h.candidateRepo.ListFavorites(models.CandidateSourceSearch, jdID, claims.OrgID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error while fetching favorites", nil)
		return
	}
	fromResume, err := h.candidateRepo.ListFavorites(models.CandidateSourceResume, jdID, claims.OrgID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error while fetching favorites", nil)
		return
	}

	if fromSearch == nil {
		fromSearch = []*models.RankedCandidate{}
	}
	if fromResume == nil {
		fromResume = []*models.RankedCandidate{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(FavoritesResponse{
		JDID: jdID,
		Favorites: map[string][]*models.RankedCandidate{
			"search": fromSearch,
			"resume": fromResume,
		},
	})
}
