package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/plangrid/matcast/core/order"
)

type orderApi struct {
	svc *order.Service
}

func registerOrderAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *order.Service) {
	api := orderApi{svc: svc}

	og := g.Group("/orders", jwt)
	og.POST("", api.create)
	og.GET("", api.query)
	og.PUT("/:id/status", api.updateStatus)
	og.DELETE("/:id", api.destroy)
}

func (api *orderApi) create(ctx echo.Context) error {
	var data order.NewOrder
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewOrder")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	ord, err := api.svc.Create(ctx.Request().Context(), data, claims.Username)
	if err != nil {
		return errors.Wrap(err, "creating order")
	}
	return ctx.JSON(http.StatusCreated, ord)
}

func (api *orderApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	orders, err := api.svc.QueryForUser(ctx.Request().Context(), claims.Username)
	if err != nil {
		return errors.Wrap(err, "querying orders")
	}
	if orders == nil {
		orders = []order.Order{}
	}
	return ctx.JSON(http.StatusOK, orders)
}

func (api *orderApi) updateStatus(ctx echo.Context) error {
	var data order.UpdateOrder
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateOrder")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	ord, err := api.svc.UpdateStatus(ctx.Request().Context(), ctx.Param("id"), claims.Username, data)
	if err != nil {
		return errors.Wrap(err, "updating order status")
	}
	return ctx.JSON(http.StatusOK, ord)
}

func (api *orderApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), claims.Username); err != nil {
		return errors.Wrap(err, "deleting order")
	}
	return ctx.NoContent(http.StatusNoContent)
}
