package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/elewand/elewand-server/internal/catalog/googlebooks"
	"github.com/elewand/elewand-server/internal/domain"
	domainerrors "github.com/elewand/elewand-server/internal/errors"
	"github.com/elewand/elewand-server/internal/validation"
)

// CatalogSearcher queries the external book catalog.
type CatalogSearcher interface {
	Search(ctx context.Context, query string, opts googlebooks.SearchOptions) ([]domain.CatalogBook, error)
}

// DefaultCatalogResults is the page size of the search passthrough.
const DefaultCatalogResults = 10

// CatalogService exposes catalog search to users.
type CatalogService struct {
	catalog   CatalogSearcher
	validator *validation.Validator
	logger    *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(catalog CatalogSearcher, validator *validation.Validator, logger *slog.Logger) *CatalogService {
	return &CatalogService{catalog: catalog, validator: validator, logger: logger}
}

// CatalogSearchQuery is a search passthrough request.
type CatalogSearchQuery struct {
	Q          string `json:"q" validate:"notblank,max=300"`
	MaxResults int    `json:"maxResults" validate:"gte=0,lte=40"`
}

// Search returns normalized catalog records. Unlike recommendations, a catalog
// failure is reported to the caller as an upstream error.
func (s *CatalogService) Search(ctx context.Context, q CatalogSearchQuery) ([]domain.CatalogBook, error) {
	if err := s.validator.Validate(q); err != nil {
		return nil, err
	}
	maxResults := q.MaxResults
	if maxResults == 0 {
		maxResults = DefaultCatalogResults
	}

	books, err := s.catalog.Search(ctx, strings.TrimSpace(q.Q), googlebooks.SearchOptions{MaxResults: maxResults})
	if err != nil {
		s.logger.Warn("catalog search failed", "query", q.Q, "error", err)
		return nil, domainerrors.Upstream("error searching books", err)
	}
	return books, nil
}
