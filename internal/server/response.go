package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/javiermolinar/quorum/internal/poll"
	"github.com/javiermolinar/quorum/internal/service"
)

// ErrorCode classifies API errors.
type ErrorCode string

const (
	CodeInvalidInput     ErrorCode = "INVALID_INPUT"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeForbidden        ErrorCode = "FORBIDDEN"
	CodeAlreadyScheduled ErrorCode = "ALREADY_SCHEDULED"
	CodeInternal         ErrorCode = "INTERNAL_SERVER_ERROR"
)

// Response types
type (
	SuccessResponse struct {
		Status    int       `json:"status"`
		Message   string    `json:"message"`
		Data      any       `json:"data,omitempty"`
		Timestamp time.Time `json:"timestamp"`
	}

	ErrorResponse struct {
		Status    string    `json:"status"`
		Code      ErrorCode `json:"code"`
		Message   string    `json:"message"`
		Details   any       `json:"details,omitempty"`
		Timestamp time.Time `json:"timestamp"`
	}

	FieldError struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	}
)

func success(c echo.Context, status int, data any, message string) error {
	return c.JSON(status, &SuccessResponse{
		Status:    status,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

func newError(status int, code ErrorCode, message string, details ...any) *echo.HTTPError {
	body := &ErrorResponse{
		Status:    "error",
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
	if len(details) > 0 {
		body.Details = details[0]
	}
	return echo.NewHTTPError(status, body)
}

func badRequest(message string, details ...any) *echo.HTTPError {
	return newError(http.StatusBadRequest, CodeInvalidInput, message, details...)
}

// classify maps a domain error to its HTTP status and code.
func classify(err error) (int, ErrorCode) {
	switch {
	case service.IsValidation(err):
		return http.StatusBadRequest, CodeInvalidInput
	case errors.Is(err, poll.ErrParticipantMismatch):
		return http.StatusForbidden, CodeForbidden
	case service.IsNotFound(err):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, poll.ErrAlreadyScheduled):
		return http.StatusConflict, CodeAlreadyScheduled
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// fromDomain turns a service error into an API error. Internal errors keep
// their message out of the response.
func fromDomain(err error) *echo.HTTPError {
	status, code := classify(err)
	switch status {
	case http.StatusInternalServerError:
		return newError(status, code, "internal server error")
	case http.StatusBadRequest:
		var verr *poll.ValidationError
		if errors.As(err, &verr) {
			return newError(status, code, "validation failed", []FieldError{{Field: verr.Field, Message: verr.Err.Error()}})
		}
	}
	return newError(status, code, rootMessage(err))
}

// rootMessage returns the innermost error message.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
