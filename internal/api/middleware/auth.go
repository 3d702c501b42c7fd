package middleware

import (
	"context"
	"net/http"

	apiContext "recruitr/internal/api/context"
	"recruitr/internal/pkg/errors"
	"recruitr/internal/platform/auth"
	"recruitr/internal/platform/models"
	"recruitr/internal/platform/repositories"
)

// Session extracts the credential cookie on every request and, when it
// decodes, puts the claims into the request context. A missing, invalid, or
// expired credential leaves the request unauthenticated; rejecting it is the
// Require* gates' job.
type Session struct {
	tokenSvc *auth.TokenService
	cookies  *auth.CookieWriter
}

func NewSession(tokenSvc *auth.TokenService, cookies *auth.CookieWriter) *Session {
	return &Session{tokenSvc: tokenSvc, cookies: cookies}
}

func (m *Session) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := m.cookies.Read(r)
		if !ok {
			next(w, r)
			return
		}

		claims, err := m.tokenSvc.Decode(token)
		if err != nil {
			next(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.Claims, claims)
		next(w, r.WithContext(ctx))
	}
}

// ClaimsFrom returns the authenticated claims, or nil for an anonymous
// request.
func ClaimsFrom(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(apiContext.Claims).(*auth.Claims)
	return claims
}

func RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ClaimsFrom(r) == nil {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Not authenticated", nil)
			return
		}
		next(w, r)
	}
}

func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFrom(r)
		if claims == nil {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Not authenticated", nil)
			return
		}
		if claims.Role != models.RoleAdmin {
			errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Admin privileges required", nil)
			return
		}
		next(w, r)
	}
}

// Superadmin gates on the user row's flag, not the credential, so revoking
// the flag takes effect before the token expires.
type Superadmin struct {
	userRepo *repositories.UserRepository
}

func NewSuperadmin(userRepo *repositories.UserRepository) *Superadmin {
	return &Superadmin{userRepo: userRepo}
}

func (m *Superadmin) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFrom(r)
		if claims == nil {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Not authenticated", nil)
			return
		}

		user, err := m.userRepo.GetByID(claims.UserID())
		if err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
			return
		}
		if user == nil || !user.IsSuperadmin {
			errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Superadmin privileges required", nil)
			return
		}
		next(w, r)
	}
}
