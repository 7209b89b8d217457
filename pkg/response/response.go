package response

import (
	"errors"
	"net/http"

	"backend/internal/apperr"
)

// Response represents a standard API response format
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// StatusOf maps a service error to its HTTP status. Unrecognized errors are
// treated as bad requests since services wrap infrastructure failures with
// their own context before returning.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrForbidden), errors.Is(err, apperr.ErrScopeViolation):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrInvalidState):
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}

// FromError builds the error envelope for a service error.
func FromError(err error) (int, Response) {
	status := StatusOf(err)
	return status, Error(status, err.Error())
}
