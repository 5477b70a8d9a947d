package http

import (
	"errors"
	"net/http"

	"optideliver/internal/core/domain/model/order"
	"optideliver/internal/core/domain/model/slot"
	"optideliver/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Error is the body of every failed response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// statusOf maps an application error to its response. The order matters:
// specific sentinels are checked before the generic validation ones they
// may be wrapped in.
func statusOf(err error) (int, string) {
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		if msg, ok := httpErr.Message.(string); ok {
			return httpErr.Code, msg
		}
		return httpErr.Code, http.StatusText(httpErr.Code)

	case errors.Is(err, slot.ErrCarrierLimitReached):
		return http.StatusConflict, slot.ErrCarrierLimitReached.Error()
	case errors.Is(err, slot.ErrSlotFull):
		return http.StatusConflict, slot.ErrSlotFull.Error()
	case errors.Is(err, order.ErrOrderAlreadyBound),
		errors.Is(err, slot.ErrSlotHasBookings):
		return http.StatusConflict, err.Error()

	case errors.Is(err, errs.ErrAccessDenied):
		return http.StatusForbidden, err.Error()

	case errors.Is(err, slot.ErrSlotNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound, err.Error()

	case errors.Is(err, slot.ErrSlotInactive),
		errors.Is(err, slot.ErrInvalidCapacity),
		errors.Is(err, slot.ErrInvalidWindow),
		errors.Is(err, order.ErrOrderNotBindable):
		return http.StatusUnprocessableEntity, err.Error()

	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest, err.Error()

	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// NewErrorHandler returns the echo error handler that renders every error
// as an Error body. Server faults are logged; client errors are not.
func NewErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, message := statusOf(err)
		if code >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(code)
		} else {
			writeErr = c.JSON(code, Error{Code: code, Message: message})
		}
		if writeErr != nil {
			logger.Warn("failed to write error response", zap.Error(writeErr))
		}
	}
}
