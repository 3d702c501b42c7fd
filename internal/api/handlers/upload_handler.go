package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"recruitr/internal/api/middleware"
	"recruitr/internal/pkg/errors"
	"recruitr/internal/platform/models"
	"recruitr/internal/platform/repositories"
)

const maxUploadBytes = 10 << 20 // per request

// UploadHandler is storage glue: it persists uploaded JD and resume files as
// rows for the downstream parsing pipeline. Text extraction itself is not
// this service's job.
type UploadHandler struct {
	uploadRepo *repositories.UploadRepository
}

func NewUploadHandler(uploadRepo *repositories.UploadRepository) *UploadHandler {
	return &UploadHandler{uploadRepo: uploadRepo}
}

func (h *UploadHandler) UploadJD(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid multipart request", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "No file provided", nil)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to read upload", nil)
		return
	}

	jd := &models.JobDescription{
		ID:        "jd_" + uuid.NewString(),
		OrgID:     claims.OrgID,
		UserID:    claims.UserID(),
		Filename:  header.Filename,
		Content:   string(content),
		CreatedAt: time.Now().Unix(),
	}

	if err := h.uploadRepo.CreateJD(jd); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to store job description", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(jd)
}

type resumeUploadError struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

type ResumeUploadResponse struct {
	SuccessfulUploads int                 `json:"successful_uploads"`
	FailedUploads     []resumeUploadError `json:"failed_uploads"`
}

// UploadResumes accepts a batch of resume files bound to one JD. Files are
// processed independently: per-file failures are reported, the rest are
// stored in a single transaction.
func (h *UploadHandler) UploadResumes(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid multipart request", nil)
		return
	}

	jdID := r.FormValue("jd_id")
	if jdID == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "jd_id is required", nil)
		return
	}

	jd, err := h.uploadRepo.GetJD(jdID, claims.OrgID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if jd == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Job description not found", nil)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "No resume files provided", nil)
		return
	}

	now := time.Now().Unix()
	var rows []*models.Resume
	var failed []resumeUploadError

	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			failed = append(failed, resumeUploadError{Filename: header.Filename, Error: err.Error()})
			continue
		}
		content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		file.Close()
		if err != nil {
			failed = append(failed, resumeUploadError{Filename: header.Filename, Error: err.Error()})
			continue
		}
		if len(content) == 0 {
			failed = append(failed, resumeUploadError{Filename: header.Filename, Error: "empty file"})
			continue
		}

		rows = append(rows, &models.Resume{
			ID:        "res_" + uuid.NewString(),
			JDID:      jdID,
			OrgID:     claims.OrgID,
			UserID:    claims.UserID(),
			Filename:  header.Filename,
			Content:   string(content),
			CreatedAt: now,
		})
	}

	if len(rows) > 0 {
		if err := h.uploadRepo.CreateResumes(rows); err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to store resumes", nil)
			return
		}
	}

	if len(rows) == 0 && len(failed) > 0 {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "All resume uploads failed", failed)
		return
	}

	if failed == nil {
		failed = []resumeUploadError{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ResumeUploadResponse{
		SuccessfulUploads: len(rows),
		FailedUploads:     failed,
	})
}
