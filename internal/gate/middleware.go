package gate

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"finportal/internal/common/auth"
	"finportal/internal/common/errors"
	httpx "finportal/internal/common/http"
	"finportal/internal/common/logger"
	"finportal/internal/common/metrics"
)

const (
	principalKey = "gate.principal"
	adminKey     = "gate.admin"
)

// Options configures the gate.
type Options struct {
	Matcher       *Matcher
	Verifier      auth.Verifier
	SessionCookie string
	SignInPath    string
	AdminRole     string
	Logger        logger.Logger
}

// Gate reads the session token, resolves the caller and applies the route
// classification.
type Gate struct {
	matcher       *Matcher
	verifier      auth.Verifier
	sessionCookie string
	signInPath    string
	adminRole     string
	log           logger.Logger
}

func New(opts Options) *Gate {
	if opts.Matcher == nil {
		opts.Matcher = NewMatcher(DefaultRules())
	}
	if opts.SessionCookie == "" {
		opts.SessionCookie = "__session"
	}
	if opts.SignInPath == "" {
		opts.SignInPath = "/sign-in"
	}
	if opts.AdminRole == "" {
		opts.AdminRole = "ADMIN"
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	return &Gate{
		matcher:       opts.Matcher,
		verifier:      opts.Verifier,
		sessionCookie: opts.SessionCookie,
		signInPath:    opts.SignInPath,
		adminRole:     opts.AdminRole,
		log:           opts.Logger,
	}
}

// Middleware must run before any handler. Public routes pass through with
// the principal attached when a valid token is present.
func (g *Gate) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := g.matcher.Classify(c.Request.Method, c.Request.URL.Path)

		principal := g.resolve(c)
		if principal != nil {
			c.Set(principalKey, principal)
			c.Set(adminKey, principal.HasRole(g.adminRole))
		}

		if route.Access == Public {
			c.Next()
			return
		}

		switch {
		case principal == nil && route.Page:
			g.decide(c, "redirect_signin")
			c.Redirect(http.StatusFound, g.signInPath+"?redirect_url="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
		case principal == nil:
			g.decide(c, "unauthenticated")
			httpx.RespondError(c, g.log, errors.NewAuthenticationError("missing or invalid session"))
		case !principal.HasRole(g.adminRole) && route.Page:
			g.decide(c, "redirect_home")
			c.Redirect(http.StatusFound, "/")
			c.Abort()
		case !principal.HasRole(g.adminRole):
			g.decide(c, "forbidden")
			httpx.RespondError(c, g.log, errors.NewAuthorizationError(g.adminRole+" role required"))
		default:
			g.decide(c, "allow")
			c.Next()
		}
	}
}

func (g *Gate) decide(c *gin.Context, decision string) {
	metrics.GateDecisions.WithLabelValues(decision).Inc()
	if decision == "allow" {
		return
	}
	g.log.Debug("Route gate rejected request", map[string]interface{}{
		"path":     c.Request.URL.Path,
		"method":   c.Request.Method,
		"decision": decision,
	})
}

func (g *Gate) resolve(c *gin.Context) *auth.Principal {
	token := g.token(c)
	if token == "" || g.verifier == nil {
		return nil
	}
	principal, err := g.verifier.Verify(c.Request.Context(), token)
	if err != nil {
		g.log.Debug("Session token rejected", map[string]interface{}{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		})
		return nil
	}
	return principal
}

// token prefers the Authorization header over the session cookie.
func (g *Gate) token(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := c.Cookie(g.sessionCookie); err == nil {
		return cookie
	}
	return ""
}

// PrincipalFrom returns the caller attached by the gate, or nil.
func PrincipalFrom(c *gin.Context) *auth.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*auth.Principal)
	return p
}

// IsAdmin reports whether the gate resolved an admin caller.
func IsAdmin(c *gin.Context) bool {
	return c.GetBool(adminKey)
}
