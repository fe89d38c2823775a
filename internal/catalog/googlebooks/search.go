package googlebooks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/elewand/elewand-server/internal/domain"
	"github.com/elewand/elewand-server/internal/metrics"
)

// Order values accepted by the volumes endpoint.
const (
	OrderRelevance = "relevance"
	OrderNewest    = "newest"
)

// MaxResultsLimit is the largest page the API serves.
const MaxResultsLimit = 40

// SearchOptions narrows a search. Zero values use the API defaults.
type SearchOptions struct {
	MaxResults int
	OrderBy    string
}

// Search queries the volumes endpoint and returns normalized records.
// Failures wrap ErrRateLimited, ErrUpstream or ErrCircuitOpen.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) ([]domain.CatalogBook, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	books, err := c.breaker.Execute(func() ([]domain.CatalogBook, error) {
		return c.search(ctx, query, opts)
	})

	outcome := metrics.OutcomeSuccess
	switch {
	case err == nil:
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = metrics.OutcomeCircuitOpen
		err = wrapError("search", query, ErrCircuitOpen)
	case errors.Is(err, ErrRateLimited):
		outcome = metrics.OutcomeRateLimited
	case errors.Is(err, context.DeadlineExceeded):
		outcome = metrics.OutcomeTimeout
	default:
		outcome = metrics.OutcomeError
	}
	c.metrics.ObserveCatalog(outcome, time.Since(start))

	if err != nil {
		c.logger.Warn("catalog search failed", "query", query, "outcome", outcome, "error", err)
		return nil, err
	}
	return books, nil
}

func (c *Client) search(ctx context.Context, query string, opts SearchOptions) ([]domain.CatalogBook, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, wrapError("search", query, fmt.Errorf("%w: %w", ErrRateLimited, err))
	}

	params := url.Values{}
	params.Set("q", query)
	if opts.MaxResults > 0 {
		params.Set("maxResults", strconv.Itoa(min(opts.MaxResults, MaxResultsLimit)))
	}
	if opts.OrderBy != "" {
		params.Set("orderBy", opts.OrderBy)
	}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	searchURL := c.baseURL + "/volumes?" + params.Encode()
	c.logger.Debug("searching catalog", "query", query, "max_results", opts.MaxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, wrapError("search", query, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, wrapError("search", query, fmt.Errorf("%w: %w", ErrUpstream, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, wrapError("search", query, ErrRateLimited)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, wrapError("search", query, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode))
	}

	var body volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, wrapError("search", query, fmt.Errorf("%w: decode response: %w", ErrUpstream, err))
	}

	books := make([]domain.CatalogBook, 0, len(body.Items))
	for i := range body.Items {
		books = append(books, normalize(&body.Items[i]))
	}
	return books, nil
}
