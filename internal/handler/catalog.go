package handler

import (
	"digital-storefront/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

type CatalogHandler struct {
	catalog service.CatalogService
}

func NewCatalogHandler(catalog service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
	}
}

func (h *CatalogHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	products, err := h.catalog.List(ctx, c.QueryParam("type"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, products)
}

func (h *CatalogHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	product, err := h.catalog.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, product)
}
