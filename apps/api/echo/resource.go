package echoapi

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/cpgs-hub/backend/core"
	"github.com/cpgs-hub/backend/core/resource"
)

// multipartOverhead leaves room for the form fields and boundaries around the file.
const multipartOverhead = 64 << 10

var (
	errResourceIDRequired = core.NewInputError("Resource ID required")
	errOnlyPDF            = core.NewInputError(resource.ErrNotPDF.Error())
)

type resourceAPI struct {
	opts    *Options
	service resource.Service
}

func registerResourceAPI(g *echo.Group, requireAdmin echo.MiddlewareFunc, opts *Options) {
	api := resourceAPI{opts: opts, service: opts.ResourceSvc}

	g.POST("/upload", api.upload, uploadBodyLimit(opts.Conf.Server.MaxUploadSize))
	g.GET("/resources", api.browse)
	g.GET("/file/:id", api.serveFile)

	adm := g.Group("/admin/resources", requireAdmin)
	adm.GET("", api.queryAll)
	adm.PATCH("", api.setApproval)
	adm.DELETE("", api.destroy)
}

// uploadBodyLimit rejects request bodies larger than maxSize plus the multipart envelope with a 413.
func uploadBodyLimit(maxSize int64) echo.MiddlewareFunc {
	if maxSize <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return middleware.BodyLimit(fmt.Sprintf("%dB", maxSize+multipartOverhead))
}

// Handlers

// upload stores a multipart PDF. Uploads are reviewed by an admin before being listed.
func (api *resourceAPI) upload(ctx echo.Context) error {
	fh, err := ctx.FormFile("file")
	if err != nil {
		var herr *echo.HTTPError
		if errors.As(err, &herr) { // body limit hit while streaming
			return herr
		}
		return errFileRequired
	}
	if fh.Header.Get(echo.HeaderContentType) != resource.PDFContentType {
		return errOnlyPDF
	}
	if max := api.opts.Conf.Server.MaxUploadSize; max > 0 && fh.Size > max {
		return errFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return errors.Wrap(err, "reading uploaded file")
	}

	semester, _ := strconv.Atoi(ctx.FormValue("semester"))
	res, err := api.service.Upload(ctx.Request().Context(), resource.NewResource{
		Type:        ctx.FormValue("type"),
		Branch:      ctx.FormValue("branch"),
		Semester:    semester,
		SubjectName: ctx.FormValue("subject_name"),
		FileName:    fh.Filename,
		FileData:    data,
		UploadedBy:  ctx.FormValue("uploaded_by"),
	})
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "resource_id": res.ID})
}

func (api *resourceAPI) browse(ctx echo.Context) error {
	filter := new(resource.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return err
	}

	resources, err := api.service.Browse(ctx.Request().Context(), *filter)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "resources": resources})
}

func (api *resourceAPI) serveFile(ctx echo.Context) error {
	res, err := api.service.GetFile(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", res.FileName))
	ctx.Response().Header().Set(echo.HeaderContentLength, strconv.Itoa(len(res.FileData)))
	return ctx.Blob(http.StatusOK, resource.PDFContentType, res.FileData)
}

func (api *resourceAPI) queryAll(ctx echo.Context) error {
	var (
		resources []resource.Resource
		err       error
	)
	if ctx.QueryParam("status") == "pending" {
		resources, err = api.service.Pending(ctx.Request().Context())
	} else {
		resources, err = api.service.All(ctx.Request().Context())
	}
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "resources": resources})
}

func (api *resourceAPI) setApproval(ctx echo.Context) error {
	data := new(resource.Approval)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	res, err := api.service.SetApproval(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "resource": res})
}

func (api *resourceAPI) destroy(ctx echo.Context) error {
	id := ctx.QueryParam("id")
	if id == "" {
		return errResourceIDRequired
	}
	if err := api.service.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "message": "Resource deleted"})
}
