package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elewand/elewand-server/internal/domain"
)

func rate(t *testing.T, env *testEnv, token, bookID string, rating int) *httptest.ResponseRecorder {
	t.Helper()

	return env.do(t, http.MethodPost, "/api/ratings", token, map[string]any{
		"bookId":     bookID,
		"bookTitle":  "Title " + bookID,
		"bookAuthor": "Author",
		"rating":     rating,
		"comment":    "  thoughts  ",
	})
}

func TestRateBook_Upsert(t *testing.T) {
	env := setupTestServer(t)
	user, token := env.createUser(t, "u1", domain.RoleUser)

	w := rate(t, env, token, "gb-1", 4)
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	first := decodeEnvelope[*domain.Rating](t, w).Data
	assert.Equal(t, user.ID, first.UserID)
	assert.Equal(t, user.Name, first.UserName)
	assert.Equal(t, "thoughts", first.Comment)

	w = rate(t, env, token, "gb-1", 2)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	second := decodeEnvelope[*domain.Rating](t, w).Data
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.Rating)

	w = env.do(t, http.MethodGet, "/api/ratings/user/"+user.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeEnvelope[[]*domain.Rating](t, w).Data, 1)
}

func TestRateBook_Errors(t *testing.T) {
	env := setupTestServer(t)
	_, token := env.createUser(t, "u1", domain.RoleUser)

	t.Run("anonymous", func(t *testing.T) {
		requireError(t, rate(t, env, "", "gb-1", 4), http.StatusUnauthorized, "UNAUTHORIZED")
	})

	t.Run("out of range", func(t *testing.T) {
		for _, r := range []int{0, 6} {
			requireError(t, rate(t, env, token, "gb-1", r), http.StatusBadRequest, "VALIDATION_ERROR")
		}
	})

	t.Run("missing book", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/ratings", token, map[string]any{"rating": 3})
		errBody := requireError(t, w, http.StatusBadRequest, "VALIDATION_ERROR")
		assert.Contains(t, errBody.Details, "bookId")
	})
}

func TestRateBook_PrivateProfile(t *testing.T) {
	env := setupTestServer(t)
	user, token := env.createUser(t, "u1", domain.RoleUser)
	_, err := env.store.UpdateUser(context.Background(), user.ID, func(u *domain.User) error {
		u.ProfileVisibility = domain.VisibilityPrivate
		return nil
	})
	require.NoError(t, err)

	requireError(t, rate(t, env, token, "gb-1", 4), http.StatusForbidden, "FORBIDDEN")
}

func TestBookRatings(t *testing.T) {
	env := setupTestServer(t)
	for i, r := range []int{5, 3, 4} {
		_, token := env.createUser(t, string(rune('a'+i)), domain.RoleUser)
		require.Equal(t, http.StatusCreated, rate(t, env, token, "gb-1", r).Code)
	}

	w := env.do(t, http.MethodGet, "/api/ratings/book/gb-1", "", nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	stats := decodeEnvelope[domain.BookRatingStats](t, w).Data

	assert.Equal(t, "gb-1", stats.BookID)
	assert.InDelta(t, 4.0, stats.AverageRating, 0.001)
	assert.Equal(t, 3, stats.TotalRatings)
	assert.Len(t, stats.Ratings, 3)

	w = env.do(t, http.MethodGet, "/api/ratings/book/unrated", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decodeEnvelope[domain.BookRatingStats](t, w).Data.TotalRatings)
}

func TestListRatings(t *testing.T) {
	env := setupTestServer(t)
	_, alice := env.createUser(t, "alice", domain.RoleUser)
	_, bob := env.createUser(t, "bob", domain.RoleUser)
	rate(t, env, alice, "low", 2)
	rate(t, env, alice, "high", 5)
	rate(t, env, bob, "high", 4)

	w := env.do(t, http.MethodGet, "/api/ratings", "", nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	books := decodeEnvelope[[]domain.RatedBook](t, w).Data

	require.Len(t, books, 2)
	assert.Equal(t, "high", books[0].BookID)
	assert.InDelta(t, 4.5, books[0].AverageRating, 0.001)
	assert.Equal(t, 2, books[0].TotalRatings)
	assert.Len(t, books[0].Comments, 2)

	w = env.do(t, http.MethodGet, "/api/ratings?limit=1", "", nil)
	assert.Len(t, decodeEnvelope[[]domain.RatedBook](t, w).Data, 1)

	w = env.do(t, http.MethodGet, "/api/ratings?sort=loudest", "", nil)
	requireError(t, w, http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestDeleteRating(t *testing.T) {
	env := setupTestServer(t)
	_, owner := env.createUser(t, "owner", domain.RoleUser)
	_, other := env.createUser(t, "other", domain.RoleUser)

	w := rate(t, env, owner, "gb-1", 4)
	require.Equal(t, http.StatusCreated, w.Code)
	rating := decodeEnvelope[*domain.Rating](t, w).Data

	w = env.do(t, http.MethodDelete, "/api/ratings/"+rating.ID, other, nil)
	requireError(t, w, http.StatusForbidden, "FORBIDDEN")

	w = env.do(t, http.MethodDelete, "/api/ratings/"+rating.ID, owner, nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	w = env.do(t, http.MethodDelete, "/api/ratings/"+rating.ID, owner, nil)
	requireError(t, w, http.StatusNotFound, "NOT_FOUND")
}
