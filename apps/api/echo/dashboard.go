package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/plangrid/matcast/core/forecast"
	"github.com/plangrid/matcast/core/order"
	"github.com/plangrid/matcast/core/project"
)

type dashboardApi struct {
	projects  *project.Service
	forecasts *forecast.Service
	orders    *order.Service
}

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, projects *project.Service, forecasts *forecast.Service, orders *order.Service) {
	api := dashboardApi{projects: projects, forecasts: forecasts, orders: orders}

	dg := g.Group("/dashboard", jwt)
	dg.GET("/metrics", api.metrics)
	dg.GET("/trends", api.trends)
}

// Metrics aggregates the portfolio snapshot shown on the landing page.
type Metrics struct {
	TotalProjects     int     `json:"total_projects"`
	ActiveProjects    int     `json:"active_projects"`
	ForecastAccuracy  float64 `json:"forecast_accuracy"`
	PendingOrders     int     `json:"pending_orders"`
	TotalOrders       int     `json:"total_orders"`
	ProjectsThisMonth int     `json:"projects_this_month"`
	CurrentMonth      string  `json:"current_month"`
	Timestamp         string  `json:"timestamp"`
}

func (api *dashboardApi) metrics(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	reqCtx := ctx.Request().Context()

	projCounts, err := api.projects.CountsForUser(reqCtx, claims.Username)
	if err != nil {
		return errors.Wrap(err, "counting projects")
	}
	accuracy, err := api.forecasts.Accuracy(reqCtx, claims.Username)
	if err != nil {
		return errors.Wrap(err, "computing forecast accuracy")
	}
	orderCounts, err := api.orders.CountsForUser(reqCtx, claims.Username)
	if err != nil {
		return errors.Wrap(err, "counting orders")
	}

	now := time.Now().UTC()
	return ctx.JSON(http.StatusOK, Metrics{
		TotalProjects:     projCounts.Total,
		ActiveProjects:    projCounts.Active,
		ForecastAccuracy:  accuracy,
		PendingOrders:     orderCounts.Pending,
		TotalOrders:       orderCounts.Total,
		ProjectsThisMonth: projCounts.ThisMonth,
		CurrentMonth:      now.Format("January 2006"),
		Timestamp:         now.Format(time.RFC3339),
	})
}

func (api *dashboardApi) trends(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	points, err := api.forecasts.Trends(ctx.Request().Context(), claims.Username, ctx.QueryParam("project_id"))
	if err != nil {
		return errors.Wrap(err, "computing trends")
	}
	if points == nil {
		points = []forecast.TrendPoint{}
	}
	return ctx.JSON(http.StatusOK, points)
}
