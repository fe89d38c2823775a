package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/elewand/elewand-server/internal/http/response"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status int
	response.ErrorBody
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before serving requests.
//
// Domain and store errors keep their own status and code. huma's request
// validation failures become 400 with a field -> message map. Anything else at
// 500 is logged and reported without its cause.
func RegisterErrorHandler(logger *slog.Logger) {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			if code, body, ok := response.FromError(err); ok {
				if code >= http.StatusInternalServerError {
					logger.Error("request failed", "status", code, "error", err)
				}
				return &APIError{status: code, ErrorBody: body}
			}
		}

		if status >= http.StatusInternalServerError {
			logger.Error("request failed", "status", status, "message", message, "errors", errs)
			return &APIError{
				status: status,
				ErrorBody: response.ErrorBody{
					Code:    response.StatusCode(status),
					Message: "internal server error",
				},
			}
		}

		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}
		return &APIError{
			status: status,
			ErrorBody: response.ErrorBody{
				Code:    response.StatusCode(status),
				Message: message,
				Details: fieldDetails(errs),
			},
		}
	}
}

// fieldDetails flattens huma's validation details into field -> message.
func fieldDetails(errs []error) map[string]string {
	var details map[string]string
	for _, err := range errs {
		var d *huma.ErrorDetail
		if !errors.As(err, &d) {
			continue
		}
		if details == nil {
			details = make(map[string]string)
		}
		field := strings.TrimPrefix(d.Location, "body.")
		if field == "" {
			field = "body"
		}
		details[field] = d.Message
	}
	return details
}
