package handler

import (
	"digital-storefront/internal/common"
	"digital-storefront/internal/dto"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorHandler renders every error as {"error":{"kind","message"}}.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := renderError(err)
		if status >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request().Context(), "request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", status,
				"error", err,
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, dto.ErrorResponse{Error: body})
		}
		if err != nil {
			logger.Warn("write error response", "error", err)
		}
	}
}

func renderError(err error) (int, dto.ErrorBody) {
	var kinded *common.Error
	if errors.As(err, &kinded) {
		return common.HTTPStatus(err), dto.ErrorBody{Kind: string(kinded.Kind), Message: kinded.Message}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, dto.ErrorBody{Kind: kindForStatus(he.Code), Message: fmt.Sprint(he.Message)}
	}

	return http.StatusInternalServerError, dto.ErrorBody{Kind: "internal", Message: "internal error"}
}

func kindForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return string(common.KindValidation)
	case http.StatusUnauthorized, http.StatusForbidden:
		return string(common.KindUnauthorized)
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return string(common.KindNotFound)
	case http.StatusTooManyRequests:
		return "rate_limited"
	}
	return "internal"
}
