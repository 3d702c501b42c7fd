package auth

import (
	"net/http"
	"time"

	"recruitr/internal/platform/config"
)

// CookieWriter externalizes the session credential. Attributes come from the
// deployment profile fixed at startup: cross-site deployments send
// SameSite=None with Secure (browsers reject one without the other),
// same-site development stays Lax over plain HTTP.
type CookieWriter struct {
	name    string
	profile config.DeploymentProfile
	ttl     time.Duration
}

func NewCookieWriter(cfg config.CookieConfig, ttl time.Duration) *CookieWriter {
	return &CookieWriter{name: cfg.Name, profile: cfg.Profile, ttl: ttl}
}

func (c *CookieWriter) Name() string { return c.name }

func (c *CookieWriter) sameSite() http.SameSite {
	if c.profile.CrossSite {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func (c *CookieWriter) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.profile.RequireSecureTransport,
		SameSite: c.sameSite(),
	})
}

// Clear must mirror Set's attributes exactly or browsers keep the cookie.
func (c *CookieWriter) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.profile.RequireSecureTransport,
		SameSite: c.sameSite(),
	})
}

func (c *CookieWriter) Read(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(c.name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
