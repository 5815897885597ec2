package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/cpgs-hub/backend/core"
	"github.com/cpgs-hub/backend/core/access"
	"github.com/cpgs-hub/backend/core/identity"
)

var errUserIDRequired = core.NewInputError("User ID required")

type identityAPI struct {
	opts    *Options
	service identity.Service
	metrics *metrics
}

func registerIdentityAPI(g *echo.Group, requireAuth, requireAdmin echo.MiddlewareFunc, opts *Options, m *metrics) {
	api := identityAPI{opts: opts, service: opts.IdentitySvc, metrics: m}

	ag := g.Group("/auth")
	ag.POST("/register", api.register)
	ag.POST("/login", api.login)
	ag.POST("/logout", api.logout)
	ag.GET("/me", api.me, requireAuth)
	ag.PUT("/me", api.updateMe, requireAuth)

	adm := g.Group("/admin")
	adm.POST("/login", api.adminLogin)
	adm.GET("/me", api.me, requireAdmin)
	adm.GET("/users", api.queryUsers, requireAdmin)
	adm.PATCH("/users", api.updateUserRole, requireAdmin)
	adm.DELETE("/users", api.deleteUser, requireAdmin)
}

// Handlers

func (api *identityAPI) register(ctx echo.Context) error {
	data := new(identity.NewIdentity)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	usr, err := api.service.Register(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	if err = issueSession(ctx, api.opts, usr, "", api.opts.Conf.Server.SessionTTL); err != nil {
		return errors.Wrap(err, "issuing session")
	}

	summary := usr.Summary()
	summary.Role = ""
	return ctx.JSON(http.StatusOK, echo.Map{"user": summary})
}

func (api *identityAPI) login(ctx echo.Context) error {
	data := new(identity.Credentials)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	usr, err := api.service.Authenticate(ctx.Request().Context(), *data)
	api.metrics.observeLogin("user", err)
	if err != nil {
		return err
	}
	if err = issueSession(ctx, api.opts, usr, "", api.opts.Conf.Server.SessionTTL); err != nil {
		return errors.Wrap(err, "issuing session")
	}

	summary := usr.Summary()
	summary.Role = ""
	return ctx.JSON(http.StatusOK, echo.Map{"user": summary})
}

func (api *identityAPI) logout(ctx echo.Context) error {
	clearSessionCookie(ctx, api.opts.Conf)
	return ctx.JSON(http.StatusOK, echo.Map{"success": true})
}

// adminLogin checks the credentials before the role, so unknown accounts cannot be told apart.
func (api *identityAPI) adminLogin(ctx echo.Context) error {
	data := new(identity.Credentials)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	usr, err := api.service.Authenticate(ctx.Request().Context(), *data)
	if err == nil {
		err = api.opts.Policy.Authorize(usr)
	}
	api.metrics.observeLogin("admin", err)
	if err != nil {
		if err == access.ErrForbidden {
			return echo.NewHTTPError(http.StatusForbidden, fmt.Sprintf("%s (Role: %s)", err, usr.Role))
		}
		return err
	}

	if err = issueSession(ctx, api.opts, usr, usr.Role.String(), api.opts.Conf.Server.AdminSessionTTL); err != nil {
		return errors.Wrap(err, "issuing session")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"user": usr.Summary()})
}

func (api *identityAPI) me(ctx echo.Context) error {
	usr, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"user": usr})
}

func (api *identityAPI) updateMe(ctx echo.Context) error {
	usr, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}

	data := new(identity.ProfileUpdate)
	if err = ctx.Bind(data); err != nil {
		return err
	}

	usr, err = api.service.UpdateProfile(ctx.Request().Context(), usr.ID, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"user": usr})
}

func (api *identityAPI) queryUsers(ctx echo.Context) error {
	users, err := api.service.QueryAll(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "users": users})
}

func (api *identityAPI) updateUserRole(ctx echo.Context) error {
	data := new(identity.RoleUpdate)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	usr, err := api.service.UpdateRole(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "user": usr})
}

func (api *identityAPI) deleteUser(ctx echo.Context) error {
	id := ctx.QueryParam("id")
	if id == "" {
		return errUserIDRequired
	}

	caller, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	if caller.ID == id {
		return errSelfDelete
	}

	if err = api.service.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "message": "User deleted"})
}
