package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"recruitr/internal/engine/oauth"
	"recruitr/internal/engine/provisioning"
	"recruitr/internal/pkg/errors"
	"recruitr/internal/platform/auth"
	"recruitr/internal/platform/config"
	"recruitr/internal/platform/sessions"
)

// Error codes carried back to the frontend login page as ?error= values.
// Every expected failure of the callback leg ends in a redirect with one of
// these, never a 5xx.
const (
	authErrStateMismatch     = "state_mismatch"
	authErrProviderError     = "provider_error"
	authErrProfileIncomplete = "profile_incomplete"
	authErrNoValidInvitation = "no_valid_invitation"
	authErrAuthFailed        = "auth_failed"
)

// AuthHandler drives the two-leg OAuth exchange. Leg 1 parks an anti-forgery
// state token (and optional post-login target) in the session store and
// redirects to the provider; leg 2 validates the returning state, exchanges
// the code, provisions the identity, and externalizes the credential cookie.
type AuthHandler struct {
	provider        oauth.Provider
	store           *sessions.Store
	provisioner     *provisioning.Service
	tokenSvc        *auth.TokenService
	cookies         *auth.CookieWriter
	sidCookies      *auth.CookieWriter
	frontend        config.FrontendConfig
	stateTTL        time.Duration
	exchangeTimeout time.Duration
}

func NewAuthHandler(provider oauth.Provider, store *sessions.Store, provisioner *provisioning.Service,
	tokenSvc *auth.TokenService, cookies, sidCookies *auth.CookieWriter,
	frontend config.FrontendConfig, sessCfg config.SessionsConfig, oauthCfg config.OAuthConfig) *AuthHandler {

	stateTTL := sessCfg.StateTTL
	if stateTTL <= 0 {
		stateTTL = 10 * time.Minute
	}
	exchangeTimeout := oauthCfg.ExchangeTimeout
	if exchangeTimeout <= 0 {
		exchangeTimeout = 10 * time.Second
	}

	return &AuthHandler{
		provider:        provider,
		store:           store,
		provisioner:     provisioner,
		tokenSvc:        tokenSvc,
		cookies:         cookies,
		sidCookies:      sidCookies,
		frontend:        frontend,
		stateTTL:        stateTTL,
		exchangeTimeout: exchangeTimeout,
	}
}

// GoogleLogin is the first leg: mint the browser session, park the
// anti-forgery state, and hand the user off to the provider.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	sid := h.ensureSession(w, r)

	state, err := randomToken()
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to start login", nil)
		return
	}

	if err := h.store.Put(r.Context(), sid, sessions.KeyOAuthState, state, h.stateTTL); err != nil {
		log.Error().Err(err).Msg("failed to store oauth state")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to start login", nil)
		return
	}

	if target := sanitizeRedirectTarget(r.URL.Query().Get("redirect_url")); target != "" {
		if err := h.store.Put(r.Context(), sid, sessions.KeyPostLoginRedirect, target, h.stateTTL); err != nil {
			log.Error().Err(err).Msg("failed to store post-login redirect")
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to start login", nil)
			return
		}
	}

	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// GoogleCallback is the second leg. Expected failures (state mismatch,
// missing invitation, incomplete profile, provider trouble) all recover by
// redirecting the browser to the login page with a machine-readable error
// code.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	// Callback URLs get pre-flighted by some agents. Answer the probe
	// without touching the session.
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	query := r.URL.Query()
	if providerErr := query.Get("error"); providerErr != "" {
		log.Warn().Str("provider_error", providerErr).Msg("oauth callback carried provider error")
		h.redirectLogin(w, r, authErrProviderError)
		return
	}

	state := query.Get("state")
	sid, hasSID := h.sidCookies.Read(r)

	var stored string
	var found bool
	if hasSID {
		var err error
		stored, found, err = h.store.Take(r.Context(), sid, sessions.KeyOAuthState)
		if err != nil {
			log.Error().Err(err).Msg("failed to read oauth state")
			h.redirectLogin(w, r, authErrAuthFailed)
			return
		}
	}

	// Stale redirects, replays, and multi-tab races all land here; they are
	// adversarial or racy, not bugs, so the user just retries.
	if !found || state == "" || stored != state {
		log.Warn().Bool("had_session", hasSID).Bool("had_state", found).Msg("oauth state mismatch")
		h.redirectLogin(w, r, authErrStateMismatch)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.exchangeTimeout)
	defer cancel()

	identity, err := h.provider.Exchange(ctx, query.Get("code"))
	if err != nil {
		log.Error().Err(err).Msg("authorization code exchange failed")
		h.redirectLogin(w, r, authErrAuthFailed)
		return
	}

	if identity.Email == "" {
		log.Warn().Msg("provider profile is missing an email address")
		h.redirectLogin(w, r, authErrProfileIncomplete)
		return
	}

	result, err := h.provisioner.Provision(r.Context(), identity.Email, identity.Name, identity.AvatarURL)
	if err != nil {
		if stderrors.Is(err, provisioning.ErrNoValidInvitation) {
			h.redirectLogin(w, r, authErrNoValidInvitation)
			return
		}
		log.Error().Err(err).Msg("identity provisioning failed")
		h.redirectLogin(w, r, authErrAuthFailed)
		return
	}

	token, err := h.tokenSvc.Issue(result.User.ID, result.Organization.ID, result.Membership.Role)
	if err != nil {
		log.Error().Err(err).Msg("failed to issue session credential")
		h.redirectLogin(w, r, authErrAuthFailed)
		return
	}

	h.cookies.Set(w, token)

	// The deep link is read-and-cleared atomically so a retried callback
	// cannot reuse a stale target.
	target := h.frontend.LandingPath
	if stored, ok, err := h.store.Take(r.Context(), sid, sessions.KeyPostLoginRedirect); err == nil && ok {
		target = stored
	}

	http.Redirect(w, r, h.frontend.BaseURL+target, http.StatusFound)
}

// Logout clears the credential cookie whether or not the request was
// authenticated.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) ensureSession(w http.ResponseWriter, r *http.Request) string {
	if sid, ok := h.sidCookies.Read(r); ok {
		return sid
	}
	sid, err := randomToken()
	if err != nil {
		// rand failure is effectively fatal; an unkeyed session just fails
		// state validation at the callback.
		return ""
	}
	h.sidCookies.Set(w, sid)
	return sid
}

func (h *AuthHandler) redirectLogin(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, h.frontend.BaseURL+h.frontend.LoginPath+"?error="+code, http.StatusFound)
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// sanitizeRedirectTarget accepts only same-site relative paths, so a crafted
// login link cannot bounce the user to a foreign origin after sign-in.
func sanitizeRedirectTarget(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") {
		return ""
	}
	if strings.HasPrefix(target, "//") || strings.Contains(target, "\\") {
		return ""
	}
	return target
}
