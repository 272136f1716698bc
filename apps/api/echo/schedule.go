package echoapi

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/escuela9/portal/core/schedule"
	"github.com/escuela9/portal/core/teacher"
)

type scheduleApi struct {
	svc        *schedule.Service
	teacherSvc *teacher.Service
}

func registerScheduleAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *schedule.Service, teacherSvc *teacher.Service) {
	api := scheduleApi{svc: svc, teacherSvc: teacherSvc}

	sg := g.Group("/schedules", jwt)
	sg.GET("", api.list)
	sg.GET("/:year", api.retrieve)
	sg.POST("", api.save, adminMiddleware())
	sg.DELETE("/:year", api.destroy, adminMiddleware())
	sg.POST("/:year/export", api.export, adminMiddleware())
}

// Handlers

// save takes the multipart form the editor posts: `year`, `data` (the sparse
// grid as JSON), `legend` (JSON) and an optional `pdf` file.
func (api *scheduleApi) save(ctx echo.Context) error {
	year := ctx.FormValue("year")
	grid := parseGrid(ctx.FormValue("data"))
	legend := parseLegend(ctx.FormValue("legend"))

	var pdf *schedule.Upload
	if fh, err := ctx.FormFile("pdf"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return errors.Wrap(err, "opening uploaded pdf")
		}
		defer f.Close()
		pdf = &schedule.Upload{Filename: fh.Filename, Content: f}
	}

	doc, err := api.svc.Save(ctx.Request().Context(), year, grid, legend, pdf)
	if err != nil {
		return errors.Wrap(err, "saving schedule")
	}
	return ctx.JSON(http.StatusOK, SaveScheduleResponse{
		Success:  "Horario guardado.",
		Document: doc,
	})
}

func (api *scheduleApi) retrieve(ctx echo.Context) error {
	doc, err := api.svc.Get(ctx.Request().Context(), ctx.Param("year"))
	if err != nil {
		return errors.Wrap(err, "fetching schedule")
	}
	return ctx.JSON(http.StatusOK, doc)
}

func (api *scheduleApi) list(ctx echo.Context) error {
	summaries, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing schedules")
	}
	return ctx.JSON(http.StatusOK, summaries)
}

func (api *scheduleApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("year")); err != nil {
		if errors.Cause(err) == schedule.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting schedule")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *scheduleApi) export(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	names, err := api.teacherSvc.Names(reqCtx)
	if err != nil {
		return errors.Wrap(err, "listing teacher names")
	}
	doc, err := api.svc.Export(reqCtx, ctx.Param("year"), names)
	if err != nil {
		return errors.Wrap(err, "exporting schedule")
	}
	return ctx.JSON(http.StatusOK, doc)
}

type SaveScheduleResponse struct {
	Success  string            `json:"success"`
	Document schedule.Document `json:"document"`
}

// parseGrid tolerates malformed editor payloads: anything that does not
// decode falls back to an empty grid rather than a 400.
func parseGrid(data string) schedule.Grid {
	if data == "" {
		return schedule.Grid{}
	}
	var grid schedule.Grid
	if err := json.Unmarshal([]byte(data), &grid); err != nil || grid == nil {
		return schedule.Grid{}
	}
	return grid
}

func parseLegend(data string) schedule.Legend {
	if data == "" {
		return schedule.Legend{}
	}
	var legend schedule.Legend
	if err := json.Unmarshal([]byte(data), &legend); err != nil || legend == nil {
		return schedule.Legend{}
	}
	return legend
}
