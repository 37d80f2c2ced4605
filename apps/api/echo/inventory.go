package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/plangrid/matcast/core/inventory"
)

type inventoryApi struct {
	svc *inventory.Service
}

func registerInventoryAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *inventory.Service) {
	api := inventoryApi{svc: svc}

	ig := g.Group("/inventory", jwt)
	ig.GET("", api.query)
	ig.POST("", api.create)
	ig.GET("/materials", api.materials)
	ig.GET("/warehouses", api.warehouses)
	ig.POST("/initialize", api.initialize, adminMiddleware())
	ig.GET("/:code", api.retrieve)
	ig.PUT("/:code", api.update)
	ig.DELETE("/:code", api.destroy, adminMiddleware())
}

func (api *inventoryApi) query(ctx echo.Context) error {
	items, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying inventory")
	}
	if items == nil {
		items = []inventory.Item{}
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *inventoryApi) create(ctx echo.Context) error {
	var data inventory.NewItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewItem")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	item, err := api.svc.Create(ctx.Request().Context(), data, claims.Username)
	if err != nil {
		return errors.Wrap(err, "creating inventory item")
	}
	return ctx.JSON(http.StatusCreated, item)
}

func (api *inventoryApi) retrieve(ctx echo.Context) error {
	item, err := api.svc.Get(ctx.Request().Context(), ctx.Param("code"))
	if err != nil {
		return errors.Wrap(err, "finding inventory item")
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *inventoryApi) update(ctx echo.Context) error {
	var data inventory.UpdateItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateItem")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	item, err := api.svc.Update(ctx.Request().Context(), ctx.Param("code"), claims.Username, data)
	if err != nil {
		return errors.Wrap(err, "updating inventory item")
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *inventoryApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("code")); err != nil {
		return errors.Wrap(err, "deleting inventory item")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *inventoryApi) initialize(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	count, seeded, err := api.svc.Initialize(ctx.Request().Context(), claims.Username)
	if err != nil {
		return errors.Wrap(err, "initializing inventory")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"count": count, "seeded": seeded})
}

func (api *inventoryApi) materials(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Materials())
}

func (api *inventoryApi) warehouses(ctx echo.Context) error {
	warehouses, err := api.svc.Warehouses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying warehouses")
	}
	if warehouses == nil {
		warehouses = []string{}
	}
	return ctx.JSON(http.StatusOK, warehouses)
}
