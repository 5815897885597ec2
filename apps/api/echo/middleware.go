package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/cpgs-hub/backend/core"
	"github.com/cpgs-hub/backend/core/access"
	"github.com/cpgs-hub/backend/services/ratelimit"
)

// requireSession rejects requests without a valid session and loads the caller's identity.
func requireSession(policy *access.Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			usr, err := policy.Resolve(ctx.Request().Context(), claims.IdentityID())
			if err != nil {
				return errors.Wrap(err, "resolving session identity")
			}
			ctx.Set(contextIdentityKey, usr)
			return next(ctx)
		}
	}
}

// requireAdminSession is requireSession plus the shared admin policy.
func requireAdminSession(policy *access.Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			usr, err := policy.RequireAdmin(ctx.Request().Context(), claims.IdentityID())
			if err != nil {
				return errors.Wrap(err, "authorizing admin session")
			}
			ctx.Set(contextIdentityKey, usr)
			return next(ctx)
		}
	}
}

// rateLimitMiddleware counts requests per client IP. A limiter failure lets the request through.
func rateLimitMiddleware(limiter ratelimit.Limiter, logger core.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if limiter == nil {
				return next(ctx)
			}
			allowed, err := limiter.Allow(ctx.Request().Context(), ctx.RealIP())
			if err != nil {
				logger.Warn("rate limiter unavailable", err)
				return next(ctx)
			}
			if !allowed {
				return errTooManyRequests
			}
			return next(ctx)
		}
	}
}
