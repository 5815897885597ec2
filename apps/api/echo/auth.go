package echoapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cpgs-hub/backend/core"
	"github.com/cpgs-hub/backend/core/access"
	"github.com/cpgs-hub/backend/core/identity"
	"github.com/cpgs-hub/backend/core/session"
)

var (
	contextClaimsKey   = "sessionClaims"
	contextIdentityKey = "identity"
)

// sessionMiddleware verifies the session token, if any, and stores its claims in the context.
// It never rejects a request: route groups decide whether a session is required.
func sessionMiddleware(sessions *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if tokenStr := extractToken(ctx); tokenStr != "" {
				if claims, err := sessions.Verify(tokenStr); err == nil {
					ctx.Set(contextClaimsKey, claims)
				}
			}
			return next(ctx)
		}
	}
}

// extractToken reads the session cookie, falling back to an "Authorization: Bearer" header.
func extractToken(ctx echo.Context) string {
	if cookie, err := ctx.Cookie(session.CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

func setSessionCookie(ctx echo.Context, conf *core.Config, tok session.Token) {
	ctx.SetCookie(&http.Cookie{
		Name:     session.CookieName,
		Value:    tok.Value,
		Path:     "/",
		Expires:  tok.ExpiresAt,
		MaxAge:   int(tok.TTL / time.Second),
		HttpOnly: true,
		Secure:   conf.IsProd(),
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(ctx echo.Context, conf *core.Config) {
	ctx.SetCookie(&http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   conf.IsProd(),
		SameSite: http.SameSiteLaxMode,
	})
}

func getContextClaims(ctx echo.Context) (session.Claims, error) {
	if claims, ok := ctx.Get(contextClaimsKey).(session.Claims); ok {
		return claims, nil
	}
	return session.Claims{}, access.ErrUnauthenticated
}

// getContextIdentity returns the identity loaded by requireSession or requireAdminSession.
func getContextIdentity(ctx echo.Context) (identity.Identity, error) {
	if usr, ok := ctx.Get(contextIdentityKey).(identity.Identity); ok {
		return usr, nil
	}
	return identity.Identity{}, access.ErrUnauthenticated
}

// issueSession signs a token for usr and attaches it to the response.
func issueSession(ctx echo.Context, opts *Options, usr identity.Identity, role string, ttl time.Duration) error {
	tok, err := opts.Sessions.Issue(usr.ID, role, ttl)
	if err != nil {
		return err
	}
	setSessionCookie(ctx, opts.Conf, tok)
	return nil
}
