package handler

import (
	"digital-storefront/internal/client"
	"digital-storefront/internal/common"
	"digital-storefront/internal/config"
	"digital-storefront/internal/dto"
	"digital-storefront/internal/middleware"
	"digital-storefront/internal/model"
	"digital-storefront/internal/repository"
	"digital-storefront/internal/service"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type RefundHandler struct {
	refunds service.RefundRegistry
	policy  config.Policy
}

func NewRefundHandler(refunds service.RefundRegistry, policy config.Policy) *RefundHandler {
	return &RefundHandler{
		refunds: refunds,
		policy:  policy,
	}
}

func (h *RefundHandler) Policy(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.RefundPolicyResponse{
		MaxRefundHours:   service.MaxRefundHours,
		Summary:          h.policy.Summary,
		SuggestedReasons: h.policy.SuggestedReasons,
	})
}

func (h *RefundHandler) CreateRequest(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateRefundRequest
	if err := c.Bind(&req); err != nil {
		return common.Validation("invalid request body")
	}

	created, err := h.refunds.CreateRequest(ctx, service.CreateRefundInput{
		OrderID:       req.OrderID,
		ProductID:     req.ProductID,
		CustomerEmail: req.CustomerEmail,
		Reason:        req.Reason,
		Amount:        req.Amount,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, dto.CreateRefundResponse{
		RequestID: created.ID,
		Status:    string(created.Status),
	})
}

func (h *RefundHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	filter := repository.RefundFilter{
		OrderID:       c.QueryParam("orderId"),
		CustomerEmail: c.QueryParam("customerEmail"),
	}
	if raw := c.QueryParam("status"); raw != "" {
		status, ok := model.ParseRequestStatus(raw)
		if !ok {
			return common.Validation("unknown status %q", raw)
		}
		filter.Status = status
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return common.Validation("limit must be a positive integer")
		}
		filter.Limit = limit
	}

	reqs, err := h.refunds.List(ctx, filter)
	if err != nil {
		return err
	}

	views := make([]dto.RefundRequest, len(reqs))
	for i, r := range reqs {
		views[i] = toRefundView(r)
	}
	return c.JSON(http.StatusOK, views)
}

func (h *RefundHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := h.refunds.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toRefundView(req))
}

func (h *RefundHandler) Decide(c echo.Context) error {
	ctx := c.Request().Context()

	var body dto.DecideRefundRequest
	if err := c.Bind(&body); err != nil {
		return common.Validation("invalid request body")
	}

	req, err := h.refunds.Decide(ctx, c.Param("id"), body.Decision, body.DenialReason, middleware.AdminSubject(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toRefundView(req))
}

func (h *RefundHandler) MarkProcessed(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := h.refunds.MarkProcessed(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toRefundView(req))
}

func toRefundView(r *model.RefundRequest) dto.RefundRequest {
	return dto.RefundRequest{
		ID:                r.ID,
		OrderID:           r.OrderID,
		ProductID:         r.ProductID,
		CustomerEmail:     r.CustomerEmail,
		Reason:            r.Reason,
		Status:            string(r.Status),
		RefundAmount:      client.MajorUnits(r.RefundAmount),
		Currency:          r.Currency,
		DenialReason:      r.DenialReason,
		DecidedBy:         r.DecidedBy,
		DecidedAt:         r.DecidedAt,
		ProcessorRefundID: r.ProcessorRefundID,
		RequestedAt:       r.RequestedAt,
		ProcessedAt:       r.ProcessedAt,
	}
}
