package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/AntonStoeckl/library-rentals-go/checkout"
	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/features/command/addbook"
	"github.com/AntonStoeckl/library-rentals-go/features/command/initiatepayment"
	"github.com/AntonStoeckl/library-rentals-go/features/command/linkchannel"
	"github.com/AntonStoeckl/library-rentals-go/features/command/scanoverdue"
	"github.com/AntonStoeckl/library-rentals-go/shell"
)

const (
	logMsgRequestFailed = "request failed"
	logAttrStatus       = "status"
	logAttrPath         = "path"
)

// ErrInvalidRequest is returned for requests that fail binding or validation.
var ErrInvalidRequest = errors.New("invalid request")

type errorResponse struct {
	Error              string     `json:"error"`
	Message            string     `json:"message"`
	EarliestReturnDate *core.Date `json:"earliest_return_date,omitempty"`
}

var badRequestErrors = []error{
	ErrInvalidRequest,
	core.ErrInvalidDateRange,
	core.ErrInvalidAmount,
	core.ErrInvalidInventory,
	addbook.ErrEmptyTitle,
	addbook.ErrEmptyAuthor,
	addbook.ErrInvalidCover,
	linkchannel.ErrEmptyChannelID,
	checkout.ErrInvalidSignature,
	checkout.ErrMalformedEvent,
}

var conflictErrors = []error{
	core.ErrDuplicateActiveBorrowing,
	core.ErrAlreadyReturned,
	initiatepayment.ErrAlreadyPaid,
	scanoverdue.ErrScanInProgress,
}

// statusOf maps an error to its HTTP status code.
func statusOf(err error) int {
	var httpErr *echo.HTTPError
	var validationErrs validator.ValidationErrors

	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code
	case errors.As(err, &validationErrs):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, core.ErrBookUnavailable):
		return http.StatusConflict
	case isAny(err, badRequestErrors):
		return http.StatusBadRequest
	case isAny(err, conflictErrors):
		return http.StatusConflict
	case core.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, core.ErrSessionCreationFailed):
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

func errorResponseOf(err error, status int) errorResponse {
	response := errorResponse{Error: http.StatusText(status), Message: err.Error()}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if msg, ok := httpErr.Message.(string); ok {
			response.Message = msg
		}
	}

	var unavailable *core.BookUnavailableError
	if errors.As(err, &unavailable) {
		response.EarliestReturnDate = unavailable.EarliestReturn
	}

	if status == http.StatusInternalServerError {
		response.Message = http.StatusText(status)
	}

	return response
}

func errorHandler(logger shell.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := statusOf(err)

		if logger != nil && status >= http.StatusInternalServerError {
			logger.Error(logMsgRequestFailed, logAttrStatus, status, logAttrPath, c.Path(), shell.LogAttrError, err.Error())
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}

		_ = c.JSON(status, errorResponseOf(err, status))
	}
}
