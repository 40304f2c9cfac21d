package gate

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"finportal/internal/common/errors"
	httpx "finportal/internal/common/http"
	"finportal/internal/common/logger"
)

// IdentityProvider is the hosted login the portal delegates to.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Logout(ctx context.Context, refreshToken string) error
}

const (
	stateCookie   = "__auth_state"
	refreshCookie = "__refresh"
	stateMaxAge   = 10 * 60
)

// SessionHandler serves the sign-in, callback and sign-out redirects.
type SessionHandler struct {
	idp           IdentityProvider
	sessionCookie string
	cookieDomain  string
	secure        bool
	log           logger.Logger
}

type SessionOptions struct {
	Provider      IdentityProvider
	SessionCookie string
	CookieDomain  string
	CookieSecure  bool
	Logger        logger.Logger
}

func NewSessionHandler(opts SessionOptions) *SessionHandler {
	if opts.SessionCookie == "" {
		opts.SessionCookie = "__session"
	}
	return &SessionHandler{
		idp:           opts.Provider,
		sessionCookie: opts.SessionCookie,
		cookieDomain:  opts.CookieDomain,
		secure:        opts.CookieSecure,
		log:           opts.Logger,
	}
}

// SignIn redirects to the hosted login, remembering where to come back to.
func (h *SessionHandler) SignIn(c *gin.Context) {
	state := uuid.New().String()
	redirect := safeRedirect(c.Query("redirect_url"))

	h.setCookie(c, stateCookie, state+"|"+redirect, stateMaxAge)
	c.Redirect(http.StatusFound, h.idp.AuthCodeURL(state))
}

// Callback completes the authorization code flow and sets the session cookie.
func (h *SessionHandler) Callback(c *gin.Context) {
	saved, err := c.Cookie(stateCookie)
	if err != nil {
		httpx.RespondError(c, h.log, errors.NewAuthenticationError("sign-in state missing"))
		return
	}
	h.setCookie(c, stateCookie, "", -1)

	state, redirect, _ := strings.Cut(saved, "|")
	if state == "" || state != c.Query("state") {
		httpx.RespondError(c, h.log, errors.NewAuthenticationError("sign-in state mismatch"))
		return
	}
	if errParam := c.Query("error"); errParam != "" {
		httpx.RespondError(c, h.log, errors.NewAuthenticationError(errParam))
		return
	}

	token, err := h.idp.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		httpx.RespondError(c, h.log, err)
		return
	}

	maxAge := 0
	if !token.Expiry.IsZero() {
		maxAge = int(time.Until(token.Expiry).Seconds())
	}
	h.setCookie(c, h.sessionCookie, token.AccessToken, maxAge)
	if token.RefreshToken != "" {
		h.setCookie(c, refreshCookie, token.RefreshToken, 0)
	}

	h.log.Info("User signed in", map[string]interface{}{
		"redirect": redirect,
	})
	c.Redirect(http.StatusFound, safeRedirect(redirect))
}

// SignOut ends the session at the identity provider and clears the cookies.
// Provider failures are logged; the local session is cleared regardless.
func (h *SessionHandler) SignOut(c *gin.Context) {
	if refresh, err := c.Cookie(refreshCookie); err == nil && refresh != "" {
		if err := h.idp.Logout(c.Request.Context(), refresh); err != nil {
			h.log.Warn("Identity provider logout failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	h.setCookie(c, h.sessionCookie, "", -1)
	h.setCookie(c, refreshCookie, "", -1)
	c.Redirect(http.StatusFound, "/")
}

const unauthorizedPage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Unauthorized</title></head>
<body>
<h1>Unauthorized</h1>
<p>You do not have permission to view this page.</p>
<p><a href="/">Return home</a></p>
</body>
</html>
`

// Unauthorized serves the static access-denied page.
func (h *SessionHandler) Unauthorized(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(unauthorizedPage))
}

func (h *SessionHandler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", h.cookieDomain, h.secure, true)
}

// safeRedirect keeps post-login redirects on this site.
func safeRedirect(target string) string {
	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") && !strings.Contains(target, "\\") {
		return target
	}
	return "/"
}
