package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/middleware"
	"staybook/internal/app/policies"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainguest "staybook/internal/domain/guest"
	"staybook/internal/domain/shared/money"
	"staybook/internal/infra/validation"
)

// errorBody is the JSON shape of every failed response.
type errorBody struct {
	Error  string                  `json:"error"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domainbooking.ErrPropertyNotFound),
		errors.Is(err, domainbooking.ErrBookingNotFound),
		errors.Is(err, domainguest.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainbooking.ErrUnavailable),
		errors.Is(err, domainbooking.ErrAlreadyCancelled),
		errors.Is(err, uow.ErrConcurrentUpdate),
		errors.Is(err, policies.ErrLockNotAcquired),
		errors.Is(err, middleware.ErrKeyReused):
		return http.StatusConflict
	case isValidationError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, validation.ErrInvalidInput),
		errors.Is(err, domainbooking.ErrInvalidRange),
		errors.Is(err, domainbooking.ErrInvalidGuestCount),
		errors.Is(err, domainbooking.ErrGuestCapacityExceeded),
		errors.Is(err, domainbooking.ErrPastStartDate),
		errors.Is(err, domainbooking.ErrNameRequired),
		errors.Is(err, domainbooking.ErrDescriptionRequired),
		errors.Is(err, domainbooking.ErrMaxGuests),
		errors.Is(err, domainbooking.ErrNightlyRate),
		errors.Is(err, domainguest.ErrNameRequired),
		errors.Is(err, money.ErrInvalidCurrency),
		errors.Is(err, errBadRequest):
		return true
	}
	return false
}

var errBadRequest = errors.New("malformed request")

func handleError(c *gin.Context, logger *slog.Logger, err error) {
	respondWithError(c, logger, statusFor(err), err)
}

func respondWithError(c *gin.Context, logger *slog.Logger, status int, err error) {
	body := errorBody{Error: err.Error()}
	var verr *validation.Error
	if errors.As(err, &verr) {
		body.Fields = verr.Fields
	}
	if status >= http.StatusInternalServerError {
		body.Error = "internal error"
		if errors.Is(err, commands.ErrHandlerNotFound) || errors.Is(err, queries.ErrHandlerNotFound) {
			status = http.StatusNotImplemented
			body.Error = "operation unavailable"
		}
		if logger != nil {
			logger.Error("request failed", "status", status, "error", err, "path", c.FullPath(), "request_id", c.GetString("request_id"))
		}
	} else if logger != nil {
		logger.Debug("request rejected", "status", status, "error", err, "path", c.FullPath())
	}
	c.JSON(status, body)
}
