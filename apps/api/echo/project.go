package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/plangrid/matcast/core/project"
)

type projectApi struct {
	svc *project.Service
}

func registerProjectAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *project.Service) {
	api := projectApi{svc: svc}

	pg := g.Group("/projects", jwt)
	pg.POST("", api.create)
	pg.GET("", api.query)
	pg.GET("/:id", api.retrieve)
	pg.GET("/:id/details", api.retrieveDetails)
	pg.PUT("/:id", api.update)
	pg.DELETE("/:id", api.destroy)
}

func (api *projectApi) create(ctx echo.Context) error {
	var data project.NewProject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProject")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	proj, err := api.svc.Create(ctx.Request().Context(), data, claims.Username)
	if err != nil {
		return errors.Wrap(err, "creating project")
	}
	return ctx.JSON(http.StatusCreated, proj)
}

func (api *projectApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	projects, err := api.svc.QueryForUser(ctx.Request().Context(), claims.Username)
	if err != nil {
		return errors.Wrap(err, "querying projects")
	}
	if projects == nil {
		projects = []project.Project{}
	}
	return ctx.JSON(http.StatusOK, projects)
}

func (api *projectApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	proj, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"), claims.Username)
	if err != nil {
		return errors.Wrap(err, "finding project")
	}
	return ctx.JSON(http.StatusOK, proj)
}

func (api *projectApi) retrieveDetails(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	details, err := api.svc.GetDetails(ctx.Request().Context(), ctx.Param("id"), claims.Username)
	if err != nil {
		return errors.Wrap(err, "finding project details")
	}
	return ctx.JSON(http.StatusOK, details)
}

func (api *projectApi) update(ctx echo.Context) error {
	var data project.UpdateProject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProject")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	proj, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), claims.Username, data)
	if err != nil {
		return errors.Wrap(err, "updating project")
	}
	return ctx.JSON(http.StatusOK, proj)
}

func (api *projectApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), claims.Username); err != nil {
		return errors.Wrap(err, "deleting project")
	}
	return ctx.NoContent(http.StatusNoContent)
}
