package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/elewand/elewand-server/internal/api"
	"github.com/elewand/elewand-server/internal/auth"
	"github.com/elewand/elewand-server/internal/config"
	"github.com/elewand/elewand-server/internal/logger"
	"github.com/elewand/elewand-server/internal/metrics"
	"github.com/elewand/elewand-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	handler *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.handler.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server and starts listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Auth:           do.MustInvoke[*service.AuthService](i),
		Library:        do.MustInvoke[*service.LibraryService](i),
		Shelf:          do.MustInvoke[*service.ShelfService](i),
		Rating:         do.MustInvoke[*service.RatingService](i),
		Profile:        do.MustInvoke[*service.ProfileService](i),
		Activity:       do.MustInvoke[*service.ActivityService](i),
		Admin:          do.MustInvoke[*service.AdminService](i),
		Catalog:        do.MustInvoke[*service.CatalogService](i),
		Recommendation: do.MustInvoke[*service.RecommendationService](i),
		Search:         indexHandle.SearchIndex,
	}

	handler := api.NewServer(storeHandle.Store, services, tokenService, m, api.Options{
		CORSOrigins:              cfg.Server.CORSOrigins,
		AuthRequestsPerMinute:    cfg.RateLimit.AuthRequestsPerMinute,
		CatalogRequestsPerMinute: cfg.RateLimit.CatalogRequestsPerMinute,
	}, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, handler: handler}, nil
}
