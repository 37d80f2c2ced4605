package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/plangrid/matcast/core/forecast"
	"github.com/plangrid/matcast/core/project"
)

type forecastApi struct {
	svc      *forecast.Service
	projects *project.Service
}

func registerForecastAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *forecast.Service, projects *project.Service) {
	api := forecastApi{svc: svc, projects: projects}

	g.POST("/forecast", api.generate, jwt)

	pg := g.Group("/projects/:id", jwt)
	pg.GET("/forecasts", api.query)
	pg.GET("/forecasts/:month", api.retrieve)
	pg.POST("/actual-values", api.saveActuals)
}

// checkAccess resolves the project through the caller's visibility scope.
func (api *forecastApi) checkAccess(ctx echo.Context, projectID string) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if _, err = api.projects.Get(ctx.Request().Context(), projectID, claims.Username); err != nil {
		return errors.Wrap(err, "finding project")
	}
	return nil
}

func (api *forecastApi) generate(ctx echo.Context) error {
	var data forecast.NewForecast
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewForecast")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	if err := api.checkAccess(ctx, data.ProjectID); err != nil {
		return err
	}

	res, err := api.svc.Generate(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "generating forecast")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *forecastApi) query(ctx echo.Context) error {
	projectID := ctx.Param("id")
	if err := api.checkAccess(ctx, projectID); err != nil {
		return err
	}

	entries, err := api.svc.ProjectForecasts(ctx.Request().Context(), projectID)
	if err != nil {
		return errors.Wrap(err, "querying forecasts")
	}
	if entries == nil {
		entries = []forecast.Entry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *forecastApi) retrieve(ctx echo.Context) error {
	projectID := ctx.Param("id")
	if err := api.checkAccess(ctx, projectID); err != nil {
		return err
	}

	entry, err := api.svc.ForecastForMonth(ctx.Request().Context(), projectID, ctx.Param("month"))
	if err != nil {
		return errors.Wrap(err, "finding forecast")
	}
	return ctx.JSON(http.StatusOK, entry)
}

func (api *forecastApi) saveActuals(ctx echo.Context) error {
	var data forecast.NewActuals
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewActuals")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	projectID := ctx.Param("id")
	if err := api.checkAccess(ctx, projectID); err != nil {
		return err
	}

	claims, _ := getContextClaims(ctx)
	month, err := api.svc.SaveActuals(ctx.Request().Context(), projectID, claims.Username, data)
	if err != nil {
		return errors.Wrap(err, "saving actual values")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"project_id": projectID, "month": month})
}
