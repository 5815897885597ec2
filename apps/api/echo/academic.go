package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/cpgs-hub/backend/core/access"
	"github.com/cpgs-hub/backend/core/announcement"
	"github.com/cpgs-hub/backend/core/exam"
	"github.com/cpgs-hub/backend/core/routine"
)

type academicAPI struct {
	policy        *access.Policy
	exams         exam.Service
	routines      routine.Service
	announcements announcement.Service
}

func registerAcademicAPI(g *echo.Group, requireAuth, requireAdmin echo.MiddlewareFunc, opts *Options) {
	api := academicAPI{
		policy:        opts.Policy,
		exams:         opts.ExamSvc,
		routines:      opts.RoutineSvc,
		announcements: opts.AnnouncementSvc,
	}

	eg := g.Group("/exams")
	eg.GET("", api.examQuery)
	eg.POST("", api.examCreate, requireAuth)
	eg.PUT("/:id", api.examUpdate, requireAuth)
	eg.DELETE("/:id", api.examDestroy, requireAuth)

	rg := g.Group("/routines")
	rg.GET("", api.routineQuery)
	rg.POST("", api.routineCreate, requireAdmin)
	rg.DELETE("/:id", api.routineDestroy, requireAdmin)

	ag := g.Group("/announcements")
	ag.GET("", api.announcementQuery)
	ag.POST("", api.announcementCreate, requireAuth)
	ag.PUT("/:id", api.announcementUpdate, requireAuth)
	ag.DELETE("/:id", api.announcementDestroy, requireAuth)
}

// authorizeOwner passes when the caller owns the record or is an admin.
func (api *academicAPI) authorizeOwner(ctx echo.Context, ownerID string) error {
	caller, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	if _, err = api.policy.RequireOwnerOrAdmin(ctx.Request().Context(), caller.ID, ownerID); err != nil {
		return errors.Wrap(err, "authorizing record owner")
	}
	return nil
}

// Exams

func (api *academicAPI) examQuery(ctx echo.Context) error {
	filter := new(exam.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return err
	}
	exams, err := api.exams.List(ctx.Request().Context(), *filter)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "exams": exams})
}

func (api *academicAPI) examCreate(ctx echo.Context) error {
	caller, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	data := new(exam.Input)
	if err = ctx.Bind(data); err != nil {
		return err
	}

	ex, err := api.exams.Create(ctx.Request().Context(), *data, caller.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"success": true, "exam": ex})
}

func (api *academicAPI) examUpdate(ctx echo.Context) error {
	ex, err := api.exams.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if err = api.authorizeOwner(ctx, ex.CreatedBy); err != nil {
		return err
	}

	data := new(exam.Input)
	if err = ctx.Bind(data); err != nil {
		return err
	}
	ex, err = api.exams.Update(ctx.Request().Context(), ex.ID, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "exam": ex})
}

func (api *academicAPI) examDestroy(ctx echo.Context) error {
	ex, err := api.exams.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if err = api.authorizeOwner(ctx, ex.CreatedBy); err != nil {
		return err
	}
	if err = api.exams.Delete(ctx.Request().Context(), ex.ID); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true})
}

// Routines

func (api *academicAPI) routineQuery(ctx echo.Context) error {
	filter := new(routine.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return err
	}
	routines, err := api.routines.List(ctx.Request().Context(), *filter)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "routines": routines})
}

func (api *academicAPI) routineCreate(ctx echo.Context) error {
	data := new(routine.NewRoutine)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	rt, err := api.routines.Create(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"success": true, "routine": rt})
}

func (api *academicAPI) routineDestroy(ctx echo.Context) error {
	if err := api.routines.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true})
}

// Announcements

func (api *academicAPI) announcementQuery(ctx echo.Context) error {
	items, err := api.announcements.List(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *academicAPI) announcementCreate(ctx echo.Context) error {
	caller, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	data := new(announcement.Input)
	if err = ctx.Bind(data); err != nil {
		return err
	}

	item, err := api.announcements.Create(ctx.Request().Context(), *data, caller.ID, caller.Name)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, item)
}

func (api *academicAPI) announcementUpdate(ctx echo.Context) error {
	item, err := api.announcements.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if err = api.authorizeOwner(ctx, item.AuthorID); err != nil {
		return err
	}

	data := new(announcement.Input)
	if err = ctx.Bind(data); err != nil {
		return err
	}
	item, err = api.announcements.Update(ctx.Request().Context(), item.ID, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *academicAPI) announcementDestroy(ctx echo.Context) error {
	item, err := api.announcements.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if err = api.authorizeOwner(ctx, item.AuthorID); err != nil {
		return err
	}
	if err = api.announcements.Delete(ctx.Request().Context(), item.ID); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true})
}
