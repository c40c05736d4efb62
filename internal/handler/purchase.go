package handler

import (
	"digital-storefront/internal/common"
	"digital-storefront/internal/dto"
	"digital-storefront/internal/middleware"
	"digital-storefront/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

type PurchaseHandler struct {
	purchases service.PurchaseService
	downloads service.DownloadService
}

func NewPurchaseHandler(purchases service.PurchaseService, downloads service.DownloadService) *PurchaseHandler {
	return &PurchaseHandler{
		purchases: purchases,
		downloads: downloads,
	}
}

// Download issues a presigned link; issuing counts as the first download.
func (h *PurchaseHandler) Download(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.DownloadRequest
	if err := c.Bind(&req); err != nil {
		return common.Validation("invalid request body")
	}

	dl, err := h.downloads.Issue(ctx, req.OrderID, req.ProductID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.DownloadResponse{
		URL:       dl.URL,
		ExpiresAt: dl.ExpiresAt,
	})
}

func (h *PurchaseHandler) CompleteOrder(c echo.Context) error {
	ctx := c.Request().Context()

	order, err := h.purchases.CompletePurchase(ctx, c.Param("id"), middleware.AdminSubject(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.CompleteOrderResponse{
		OrderID: order.OrderID,
		Status:  string(order.Status),
	})
}
