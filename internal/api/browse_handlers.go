package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/elewand/elewand-server/internal/domain"
	"github.com/elewand/elewand-server/internal/service"
)

func (s *Server) registerBrowseRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "browseBooks",
		Method:      http.MethodGet,
		Path:        "/api/books",
		Summary:     "Browse general catalog",
		Description: "Returns books from the built-in catalog, optionally filtered by genre",
		Tags:        []string{tagBrowse},
	}, s.handleBrowse)

	huma.Register(s.api, huma.Operation{
		OperationID:      "browseBooksPost",
		Method:           http.MethodPost,
		Path:             "/api/books",
		Summary:          "Browse general catalog (body)",
		Description:      "Same as GET /api/books with the parameters in a JSON body",
		Tags:             []string{tagBrowse},
		SkipValidateBody: true,
	}, s.handleBrowsePost)
}

// === DTOs ===

// BrowseInput carries the browse query. limit and score are loosely typed on purpose.
type BrowseInput struct {
	Genre string `query:"genre" doc:"Exact genre, e.g. fantasy"`
	Limit string `query:"limit" doc:"Number of books (default 6)"`
	Score string `query:"score" doc:"Preference score; picks max(1, round(score/10)) books when limit is absent"`
}

// BrowseBody accepts numbers or strings for limit and score.
type BrowseBody struct {
	Genre string `json:"genre,omitempty"`
	Limit any    `json:"limit,omitempty"`
	Score any    `json:"score,omitempty"`
}

// BrowsePostInput wraps the body form of the browse query.
type BrowsePostInput struct {
	Body BrowseBody `required:"false"`
}

// BrowseOutput wraps the browse result for Huma.
type BrowseOutput struct {
	Body []domain.BrowseBook
}

// === Handlers ===

func (s *Server) handleBrowse(_ context.Context, input *BrowseInput) (*BrowseOutput, error) {
	return &BrowseOutput{Body: service.Browse(service.BrowseQuery{
		Genre: input.Genre,
		Limit: input.Limit,
		Score: input.Score,
	})}, nil
}

func (s *Server) handleBrowsePost(_ context.Context, input *BrowsePostInput) (*BrowseOutput, error) {
	return &BrowseOutput{Body: service.Browse(service.BrowseQuery{
		Genre: input.Body.Genre,
		Limit: looseString(input.Body.Limit),
		Score: looseString(input.Body.Score),
	})}, nil
}

// looseString renders a JSON scalar the way it would appear in a query string.
func looseString(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	default:
		return fmt.Sprint(n)
	}
}
