package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/plangrid/matcast/core/updates"
)

type updatesApi struct {
	hub updates.Hub
}

func registerUpdatesAPI(g *echo.Group, jwt echo.MiddlewareFunc, hub updates.Hub) {
	api := updatesApi{hub: hub}

	ug := g.Group("/updates", jwt)
	ug.POST("/subscribe/:teamID", api.subscribe)
	ug.DELETE("/subscribe/:teamID", api.unsubscribe)
	ug.GET("/poll", api.poll)
}

func (api *updatesApi) subscribe(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	api.hub.Subscribe(claims.Username, ctx.Param("teamID"))
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Subscribed to team updates."})
}

func (api *updatesApi) unsubscribe(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	api.hub.Unsubscribe(claims.Username, ctx.Param("teamID"))
	return ctx.NoContent(http.StatusNoContent)
}

func (api *updatesApi) poll(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	events := api.hub.Poll(claims.Username)
	if events == nil {
		events = []updates.Update{}
	}
	return ctx.JSON(http.StatusOK, events)
}
