package api

import (
	"github.com/elewand/elewand-server/internal/search"
	"github.com/elewand/elewand-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth           *service.AuthService
	Library        *service.LibraryService
	Shelf          *service.ShelfService
	Rating         *service.RatingService
	Profile        *service.ProfileService
	Activity       *service.ActivityService
	Admin          *service.AdminService
	Catalog        *service.CatalogService
	Recommendation *service.RecommendationService
	Search         *search.SearchIndex // health checks only; writes go through the store
}
