package handler

import (
	"digital-storefront/internal/common"
	"digital-storefront/internal/dto"
	"digital-storefront/internal/model"
	"digital-storefront/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

const previewMessage = "preview does not affect refund eligibility"

type AccessHandler struct {
	tracker   service.AccessTracker
	evaluator service.EligibilityEvaluator
}

func NewAccessHandler(tracker service.AccessTracker, evaluator service.EligibilityEvaluator) *AccessHandler {
	return &AccessHandler{
		tracker:   tracker,
		evaluator: evaluator,
	}
}

func (h *AccessHandler) RecordAccess(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RecordAccessRequest
	if err := c.Bind(&req); err != nil {
		return common.Validation("invalid request body")
	}

	accessType := model.AccessType(req.AccessType)
	if _, err := h.tracker.RecordAccess(ctx, req.OrderID, req.ProductID, accessType); err != nil {
		return err
	}

	if accessType == model.AccessTypePreview {
		return c.JSON(http.StatusOK, dto.RecordAccessResponse{
			Success:        true,
			AccessType:     req.AccessType,
			RefundEligible: true,
			RefundMessage:  previewMessage,
		})
	}

	// eligibility is re-queried rather than inferred from the write
	verdict, err := h.evaluator.Check(ctx, req.OrderID, req.ProductID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.RecordAccessResponse{
		Success:        true,
		AccessType:     req.AccessType,
		RefundEligible: verdict.Eligible,
		RefundMessage:  verdict.Reason,
	})
}

func (h *AccessHandler) Eligibility(c echo.Context) error {
	ctx := c.Request().Context()

	verdict, err := h.evaluator.Check(ctx, c.QueryParam("orderId"), c.QueryParam("productId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.EligibilityResponse{
		Eligible:      verdict.Eligible,
		Reason:        verdict.Reason,
		TimeRemaining: verdict.TimeRemaining,
	})
}
