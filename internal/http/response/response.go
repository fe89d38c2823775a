// Package response provides the JSON envelope shared by every API response
// and helpers for writing it from plain net/http handlers.
package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	domainerrors "github.com/elewand/elewand-server/internal/errors"
	"github.com/elewand/elewand-server/internal/store"
)

// CodeRateLimited is the error code for 429 responses.
const CodeRateLimited = "RATE_LIMITED"

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details, e.g. field messages"`
}

// Envelope provides a consistent JSON response structure.
// Data is only omitted when it is nil, so empty lists still appear as [].
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// OK wraps data in a success envelope.
func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// Fail wraps an error body in a failure envelope.
func Fail(body ErrorBody) Envelope {
	return Envelope{Success: false, Error: &body}
}

func write(w http.ResponseWriter, status int, env Envelope, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(env); err != nil && logger != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// JSON writes data with the given status code. Statuses >= 400 produce a failure envelope.
func JSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	if status >= http.StatusBadRequest {
		write(w, status, Envelope{Success: false, Data: data}, logger)
		return
	}
	write(w, status, OK(data), logger)
}

// Success writes a successful JSON response (200 OK).
func Success(w http.ResponseWriter, data any, logger *slog.Logger) {
	JSON(w, http.StatusOK, data, logger)
}

// Created writes a created response (201 Created).
func Created(w http.ResponseWriter, data any, logger *slog.Logger) {
	JSON(w, http.StatusCreated, data, logger)
}

// NoContent writes a no content response (204 No Content).
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes an error envelope.
func Error(w http.ResponseWriter, status int, code, message string, logger *slog.Logger) {
	write(w, status, Fail(ErrorBody{Code: code, Message: message}), logger)
}

// BadRequest writes a 400 Bad Request response.
func BadRequest(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusBadRequest, string(domainerrors.CodeValidation), message, logger)
}

// Unauthorized writes a 401 Unauthorized response.
func Unauthorized(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusUnauthorized, string(domainerrors.CodeUnauthorized), message, logger)
}

// Forbidden writes a 403 Forbidden response.
func Forbidden(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusForbidden, string(domainerrors.CodeForbidden), message, logger)
}

// NotFound writes a 404 Not Found response.
func NotFound(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusNotFound, string(domainerrors.CodeNotFound), message, logger)
}

// TooManyRequests writes a 429 Too Many Requests response.
func TooManyRequests(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusTooManyRequests, CodeRateLimited, message, logger)
}

// InternalError writes a 500 Internal Server Error response.
func InternalError(w http.ResponseWriter, logger *slog.Logger) {
	Error(w, http.StatusInternalServerError, string(domainerrors.CodeInternal), "internal server error", logger)
}

// FromError converts err into a status and error body.
// Domain and store errors keep their status; anything else becomes a generic 500.
// The boolean reports whether err was recognized.
func FromError(err error) (int, ErrorBody, bool) {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return domainErr.HTTPStatus(), ErrorBody{
			Code:    string(domainErr.Code),
			Message: domainErr.Message,
			Details: domainErr.Details,
		}, true
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		code := StatusCode(storeErr.HTTPCode())
		if storeErr.HTTPCode() == http.StatusConflict {
			code = string(domainerrors.CodeAlreadyExists)
		}
		return storeErr.HTTPCode(), ErrorBody{Code: code, Message: storeErr.Message}, true
	}

	return http.StatusInternalServerError, ErrorBody{
		Code:    string(domainerrors.CodeInternal),
		Message: "internal server error",
	}, false
}

// HandleError writes an appropriate HTTP response based on the error type.
// Unknown errors are logged and become 500 without exposing the cause.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	status, body, known := FromError(err)
	if !known && logger != nil {
		logger.Error("unhandled error", "error", err)
	}
	write(w, status, Fail(body), logger)
}

// StatusCode maps an HTTP status to the matching error code.
func StatusCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return string(domainerrors.CodeValidation)
	case http.StatusUnauthorized:
		return string(domainerrors.CodeUnauthorized)
	case http.StatusForbidden:
		return string(domainerrors.CodeForbidden)
	case http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case http.StatusConflict:
		return string(domainerrors.CodeConflict)
	case http.StatusRequestEntityTooLarge:
		return string(domainerrors.CodePayloadTooLarge)
	case http.StatusTooManyRequests:
		return CodeRateLimited
	case http.StatusBadGateway:
		return string(domainerrors.CodeUpstream)
	case http.StatusServiceUnavailable:
		return string(domainerrors.CodeUnavailable)
	default:
		return string(domainerrors.CodeInternal)
	}
}
