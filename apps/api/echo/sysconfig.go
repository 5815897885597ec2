package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cpgs-hub/backend/core/sysconfig"
)

type configAPI struct {
	service      sysconfig.Service
	requireAdmin echo.MiddlewareFunc
}

func registerConfigAPI(g *echo.Group, requireAdmin echo.MiddlewareFunc, opts *Options) {
	api := configAPI{service: opts.ConfigSvc, requireAdmin: requireAdmin}

	cg := g.Group("/admin/config")
	cg.GET("", api.query) // public keys are readable without a session
	cg.POST("", api.set, requireAdmin)
}

// Handlers

func (api *configAPI) query(ctx echo.Context) error {
	key := ctx.QueryParam("key")
	switch {
	case key == "":
		return api.requireAdmin(api.list)(ctx)
	case sysconfig.IsPublic(key):
		return api.value(ctx)
	default:
		return api.requireAdmin(api.value)(ctx)
	}
}

func (api *configAPI) list(ctx echo.Context) error {
	configs, err := api.service.List(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "configs": configs})
}

// value renders a missing key as null.
func (api *configAPI) value(ctx echo.Context) error {
	val, found, err := api.service.Value(ctx.Request().Context(), ctx.QueryParam("key"))
	if err != nil {
		return err
	}
	if !found {
		return ctx.JSON(http.StatusOK, echo.Map{"success": true, "value": nil})
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "value": val})
}

func (api *configAPI) set(ctx echo.Context) error {
	caller, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	data := new(sysconfig.Input)
	if err = ctx.Bind(data); err != nil {
		return err
	}

	entry, err := api.service.Set(ctx.Request().Context(), *data, caller.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "config": entry})
}
