package validation_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/elewand/elewand-server/internal/errors"
	"github.com/elewand/elewand-server/internal/validation"
)

type registerRequest struct {
	Name     string `json:"name" validate:"notblank,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,hasdigit"`
}

type moveRequest struct {
	Shelf string `json:"shelf" validate:"required,shelf"`
	Pages int    `json:"pagesRead" validate:"gte=0"`
}

func detailsOf(t *testing.T, err error) map[string]string {
	t.Helper()

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())

	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok, "details should be a field map")
	return details
}

func TestValidator_Success(t *testing.T) {
	v := validation.New()

	err := v.Validate(registerRequest{Name: "Ada", Email: "ada@example.com", Password: "password1"})
	assert.NoError(t, err)
}

func TestValidator_FieldMessages(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name  string
		req   registerRequest
		field string
		msg   string
	}{
		{"blank name", registerRequest{Name: "   ", Email: "a@b.co", Password: "password1"}, "name", "is required"},
		{"bad email", registerRequest{Name: "A", Email: "nope", Password: "password1"}, "email", "must be a valid email address"},
		{"short password", registerRequest{Name: "A", Email: "a@b.co", Password: "pass1"}, "password", "must be at least 8 characters"},
		{"no digit", registerRequest{Name: "A", Email: "a@b.co", Password: "password"}, "password", "must contain a number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details := detailsOf(t, v.Validate(tt.req))
			assert.Equal(t, tt.msg, details[tt.field])
		})
	}
}

func TestValidator_ShelfRule(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Validate(moveRequest{Shelf: "currently-reading"}))
	assert.NoError(t, v.Validate(moveRequest{Shelf: "custom"}))

	details := detailsOf(t, v.Validate(moveRequest{Shelf: "on-the-nightstand"}))
	assert.Contains(t, details["shelf"], "want-to-read")

	details = detailsOf(t, v.Validate(moveRequest{Shelf: "read", Pages: -1}))
	assert.Equal(t, "must be greater than or equal to 0", details["pagesRead"])
}
