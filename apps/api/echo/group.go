package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/escuela9/portal/core/group"
	"github.com/escuela9/portal/core/teacher"
)

type groupApi struct {
	svc        *group.Service
	teacherSvc *teacher.Service
}

func registerGroupAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *group.Service, teacherSvc *teacher.Service) {
	api := groupApi{svc: svc, teacherSvc: teacherSvc}

	gg := g.Group("/groups", jwt)
	gg.GET("/mine", api.mine)

	gg.GET("", api.query, adminMiddleware())
	gg.POST("", api.create, adminMiddleware())
	gg.GET("/:id", api.retrieve, adminMiddleware())
	gg.PUT("/:id/teacher", api.assignTeacher, adminMiddleware())
	gg.DELETE("/:id", api.destroy, adminMiddleware())
}

// Handlers

func (api *groupApi) create(ctx echo.Context) error {
	var data group.NewGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGroup")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	g, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating group")
	}
	return ctx.JSON(http.StatusCreated, g)
}

func (api *groupApi) query(ctx echo.Context) error {
	groups, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying groups")
	}
	if groups == nil {
		groups = []group.Group{}
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *groupApi) retrieve(ctx echo.Context) error {
	g, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == group.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "fetching group")
	}
	return ctx.JSON(http.StatusOK, g)
}

// mine lists the groups assigned to the logged-in teacher, matched through
// the teacher profile carrying the same email as the account.
func (api *groupApi) mine(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	reqCtx := ctx.Request().Context()
	groups := []group.Group{}

	teachers, err := api.teacherSvc.QueryAll(reqCtx)
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	for _, t := range teachers {
		if t.Email != "" && t.Email == claims.Email {
			if groups, err = api.svc.QueryByTeacher(reqCtx, t.ID); err != nil {
				return errors.Wrap(err, "querying groups by teacher")
			}
			break
		}
	}
	if groups == nil {
		groups = []group.Group{}
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *groupApi) assignTeacher(ctx echo.Context) error {
	var data AssignTeacherRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignTeacherRequest")
	}
	if data.TeacherID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "teacher_id is required")
	}

	reqCtx := ctx.Request().Context()
	if _, err := api.teacherSvc.GetByID(reqCtx, data.TeacherID); err != nil {
		if errors.Cause(err) == teacher.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "fetching teacher")
	}

	g, err := api.svc.AssignTeacher(reqCtx, ctx.Param("id"), data.TeacherID)
	if err != nil {
		if errors.Cause(err) == group.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "assigning teacher")
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *groupApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting group")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type AssignTeacherRequest struct {
	TeacherID string `json:"teacher_id"`
}
