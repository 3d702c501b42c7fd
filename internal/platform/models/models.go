package models

type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FullName     string `json:"full_name"`
	AvatarURL    string `json:"avatar_url,omitempty"`
	IsSuperadmin bool   `json:"is_superadmin"`
	CreatedAt    int64  `json:"created_at"`
	UpdatedAt    int64  `json:"updated_at"`
}

type Organization struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// Membership binds a user to an organization with a role. At most one row
// exists per (user_id, org_id); the table enforces it.
type Membership struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	OrgID     string `json:"org_id"`
	Role      string `json:"role"`
	CreatedAt int64  `json:"created_at"`
}

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

const (
	InvitationPending  = "pending"
	InvitationConsumed = "consumed"
	InvitationRevoked  = "revoked"
)

// Invitation is a pending grant of membership keyed by email. Exactly one of
// OrgID (join an existing tenant) or OrgName (establish a new tenant) is set.
type Invitation struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	OrgID      string `json:"org_id,omitempty"`
	OrgName    string `json:"org_name,omitempty"`
	Role       string `json:"role"`
	Status     string `json:"status"`
	InvitedBy  string `json:"invited_by,omitempty"`
	CreatedAt  int64  `json:"created_at"`
	ConsumedAt *int64 `json:"consumed_at,omitempty"`
}

type JobDescription struct {
	ID        string `json:"id"`
	OrgID     string `json:"org_id"`
	UserID    string `json:"user_id"`
	Filename  string `json:"filename"`
	Content   string `json:"-"`
	CreatedAt int64  `json:"created_at"`
}

type Resume struct {
	ID         string `json:"id"`
	JDID       string `json:"jd_id"`
	OrgID      string `json:"org_id"`
	UserID     string `json:"user_id"`
	Filename   string `json:"filename"`
	PersonName string `json:"person_name,omitempty"`
	Role       string `json:"role,omitempty"`
	Company    string `json:"company,omitempty"`
	ProfileURL string `json:"profile_url,omitempty"`
	Content    string `json:"-"`
	CreatedAt  int64  `json:"created_at"`
}

// Candidate sources for the favorite toggle. Search results live in
// ranked_candidates keyed by profile_id; parsed resumes live in
// ranked_candidates_from_resume keyed by resume_id.
const (
	CandidateSourceSearch = "ranked_candidates"
	CandidateSourceResume = "ranked_candidates_from_resume"
)

type RankedCandidate struct {
	CandidateID   string  `json:"candidate_id"`
	JDID          string  `json:"jd_id"`
	OrgID         string  `json:"org_id"`
	CandidateName string  `json:"candidate_name,omitempty"`
	Score         float64 `json:"score"`
	Favorite      bool    `json:"favorite"`
	CreatedAt     int64   `json:"created_at"`
}
