package providers

import (
	"github.com/samber/do/v2"

	"github.com/elewand/elewand-server/internal/catalog/googlebooks"
	"github.com/elewand/elewand-server/internal/config"
	"github.com/elewand/elewand-server/internal/logger"
	"github.com/elewand/elewand-server/internal/metrics"
)

// ProvideCatalogClient provides the Google Books client.
func ProvideCatalogClient(i do.Injector) (*googlebooks.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	m := do.MustInvoke[*metrics.Metrics](i)

	client := googlebooks.New(googlebooks.Config{
		BaseURL:           cfg.Catalog.BaseURL,
		APIKey:            cfg.Catalog.APIKey,
		Timeout:           cfg.Catalog.Timeout,
		RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
		BreakerFailures:   cfg.Catalog.BreakerFailures,
		BreakerCooldown:   cfg.Catalog.BreakerCooldown,
	}, m, log.Component("catalog"))

	log.Info("Catalog client initialized",
		"base_url", cfg.Catalog.BaseURL,
		"api_key_set", cfg.Catalog.APIKey != "",
	)

	return client, nil
}
