package repositories

import (
	"database/sql"
	"fmt"

	"recruitr/internal/platform/models"
)

// CandidateRepository serves the favorite toggle across the two ranked
// tables. The source value picks the table and its key column.
type CandidateRepository struct {
	db *sql.DB
}

func NewCandidateRepository(db *sql.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

func tableFor(source string) (table, keyColumn string, err error) {
	switch source {
	case models.CandidateSourceSearch:
		return "ranked_candidates", "profile_id", nil
	case models.CandidateSourceResume:
		return "ranked_candidates_from_resume", "resume_id", nil
	default:
		return "", "", fmt.Errorf("unknown candidate source %q", source)
	}
}

// SetFavorite updates the flag for one candidate row, scoped to the caller's
// org. Returns false when no such candidate exists.
func (r *CandidateRepository) SetFavorite(source, candidateID, orgID string, favorite bool) (bool, error) {
	table, keyColumn, err := tableFor(source)
	if err != nil {
		return false, err
	}

	res, err := r.db.Exec(
		fmt.Sprintf(`UPDATE %s SET favorite = ? WHERE %s = ? AND org_id = ?`, table, keyColumn),
		favorite, candidateID, orgID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *CandidateRepository) ListFavorites(source, jdID, orgID string) ([]*models.RankedCandidate, error) {
	table, keyColumn, err := tableFor(source)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(
		fmt.Sprintf(`
			SELECT %s, jd_id, org_id, candidate_name, score, favorite, created_at
			FROM %s WHERE jd_id = ? AND org_id = ? AND favorite = 1
		`, keyColumn, table),
		jdID, orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []*models.RankedCandidate
	for rows.Next() {
		c := &models.RankedCandidate{}
		if err := rows.Scan(&c.CandidateID, &c.JDID, &c.OrgID, &c.CandidateName,
			&c.Score, &c.Favorite, &c.CreatedAt); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

type UploadRepository struct {
	db *sql.DB
}

func NewUploadRepository(db *sql.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

func (r *UploadRepository) CreateJD(jd *models.JobDescription) error {
	_, err := r.db.Exec(`
		INSERT INTO job_descriptions (id, org_id, user_id, filename, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, jd.ID, jd.OrgID, jd.UserID, jd.Filename, jd.Content, jd.CreatedAt)
	return err
}

func (r *UploadRepository) GetJD(id, orgID string) (*models.JobDescription, error) {
	jd := &models.JobDescription{}
	err := r.db.QueryRow(`
		SELECT id, org_id, user_id, filename, content, created_at
		FROM job_descriptions WHERE id = ? AND org_id = ?
	`, id, orgID).Scan(&jd.ID, &jd.OrgID, &jd.UserID, &jd.Filename, &jd.Content, &jd.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return jd, nil
}

func (r *UploadRepository) CreateResumes(resumes []*models.Resume) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, res := range resumes {
		_, err := tx.Exec(`
			INSERT INTO resumes (id, jd_id, org_id, user_id, filename, person_name, role, company, profile_url, content, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, res.ID, res.JDID, res.OrgID, res.UserID, res.Filename, res.PersonName,
			res.Role, res.Company, res.ProfileURL, res.Content, res.CreatedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}
