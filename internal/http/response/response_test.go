package response

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/elewand/elewand-server/internal/errors"
	"github.com/elewand/elewand-server/internal/store"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestSuccess(t *testing.T) {
	w := httptest.NewRecorder()

	Success(w, map[string]any{"id": "123", "name": "test"}, discard())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	out := decode(t, w)
	assert.Equal(t, true, out["success"])
	assert.NotContains(t, out, "error")

	data, ok := out["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "123", data["id"])
}

func TestSuccess_EmptyListIsKept(t *testing.T) {
	w := httptest.NewRecorder()

	Success(w, []string{}, nil)

	assert.JSONEq(t, `{"success":true,"data":[]}`, w.Body.String())
}

func TestCreated(t *testing.T) {
	w := httptest.NewRecorder()

	Created(w, map[string]string{"id": "new-id"}, discard())

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, decode(t, w)["success"])
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()

	NoContent(w)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		code   string
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "invalid input", nil) }, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "authentication required", nil) }, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", func(w http.ResponseWriter) { Forbidden(w, "access denied", nil) }, http.StatusForbidden, "FORBIDDEN"},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "missing", nil) }, http.StatusNotFound, "NOT_FOUND"},
		{"rate limited", func(w http.ResponseWriter) { TooManyRequests(w, "slow down", nil) }, http.StatusTooManyRequests, CodeRateLimited},
		{"internal", func(w http.ResponseWriter) { InternalError(w, nil) }, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			assert.Equal(t, tt.status, w.Code)
			out := decode(t, w)
			assert.Equal(t, false, out["success"])
			assert.NotContains(t, out, "data")

			body, ok := out["error"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, tt.code, body["code"])
		})
	}
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:    "domain validation with details",
			err:     domainerrors.ValidationWithDetails("invalid request", map[string]string{"email": "must be a valid email address"}),
			status:  http.StatusBadRequest,
			code:    "VALIDATION_ERROR",
			message: "invalid request",
		},
		{
			name:    "wrapped domain error",
			err:     fmt.Errorf("add book: %w", domainerrors.NotFound("book not found")),
			status:  http.StatusNotFound,
			code:    "NOT_FOUND",
			message: "book not found",
		},
		{
			name:    "store not found",
			err:     store.ErrNotFound,
			status:  http.StatusNotFound,
			code:    "NOT_FOUND",
			message: "resource not found",
		},
		{
			name:    "store duplicate",
			err:     store.ErrAlreadyExists,
			status:  http.StatusConflict,
			code:    "ALREADY_EXISTS",
			message: "resource already exists",
		},
		{
			name:    "unknown error hides cause",
			err:     errors.New("disk on fire"),
			status:  http.StatusInternalServerError,
			code:    "INTERNAL_ERROR",
			message: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleError(w, tt.err, discard())

			assert.Equal(t, tt.status, w.Code)
			out := decode(t, w)
			body := out["error"].(map[string]any)
			assert.Equal(t, tt.code, body["code"])
			assert.Equal(t, tt.message, body["message"])
			assert.NotContains(t, w.Body.String(), "disk on fire")
		})
	}
}

func TestHandleError_KeepsDetails(t *testing.T) {
	w := httptest.NewRecorder()
	HandleError(w, domainerrors.ValidationWithDetails("invalid request", map[string]string{"rating": "must be at most 5"}), nil)

	body := decode(t, w)["error"].(map[string]any)
	details := body["details"].(map[string]any)
	assert.Equal(t, "must be at most 5", details["rating"])
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, "VALIDATION_ERROR", StatusCode(http.StatusUnprocessableEntity))
	assert.Equal(t, "CONFLICT", StatusCode(http.StatusConflict))
	assert.Equal(t, "PAYLOAD_TOO_LARGE", StatusCode(http.StatusRequestEntityTooLarge))
	assert.Equal(t, "UPSTREAM_ERROR", StatusCode(http.StatusBadGateway))
	assert.Equal(t, "INTERNAL_ERROR", StatusCode(http.StatusTeapot))
}
