package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/elewand/elewand-server/internal/catalog/googlebooks"
	"github.com/elewand/elewand-server/internal/domain"
	domainerrors "github.com/elewand/elewand-server/internal/errors"
	"github.com/elewand/elewand-server/internal/metrics"
	"github.com/elewand/elewand-server/internal/store"
)

// Scorer tuning.
const (
	DefaultRecommendations = 8
	MaxRecommendations     = 40

	topCategoryCount   = 3
	topAuthorCount     = 2
	queriedTermCount   = 2
	minQueryTerms      = 2
	paddedTermCount    = 3
	resultsPerTerm     = 10
	backfillThreshold  = 3
	descriptionLimit   = 200
	noDescriptionText  = "No description available."
	interestReasonText = "Based on your interest in %s"
)

var fallbackTerms = []string{"bestseller", "fiction", "popular"}

// RecommendationService suggests catalog books from the shape of a user's library.
type RecommendationService struct {
	store   *store.Store
	catalog CatalogSearcher
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRecommendationService creates a scorer. src seeds the shuffle; nil seeds from the clock.
func NewRecommendationService(store *store.Store, catalog CatalogSearcher, m *metrics.Metrics, src rand.Source, logger *slog.Logger) *RecommendationService {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &RecommendationService{
		store:   store,
		catalog: catalog,
		metrics: m,
		logger:  logger,
		rng:     rand.New(src), //nolint:gosec // shuffling for variety, not security
	}
}

// Recommend returns up to maxResults books the user does not own.
// Catalog failures reduce the candidate pool and are never returned.
func (s *RecommendationService) Recommend(ctx context.Context, userID string, maxResults int) (*domain.RecommendationResult, error) {
	if maxResults == 0 {
		maxResults = DefaultRecommendations
	}
	if maxResults < 1 || maxResults > MaxRecommendations {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"maxResults": fmt.Sprintf("must be between 1 and %d", MaxRecommendations),
		})
	}

	books, err := s.store.ListBooksByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load library: %w", err)
	}

	if len(books) == 0 {
		s.metrics.CountRecommendations("general")
		return &domain.RecommendationResult{
			Recommendations: generalRecommendations(maxResults, nil),
			Reason:          domain.ReasonGeneral,
		}, nil
	}

	prefs := inferTaste(books)
	terms := queryTerms(prefs.TopCategories)
	owned := ownedSet(books)

	candidates := s.fetchCandidates(ctx, terms, owned)

	if len(candidates) > 2*maxResults {
		candidates = candidates[:2*maxResults]
	}
	s.shuffle(candidates)
	if len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}

	if len(candidates) < backfillThreshold {
		for _, b := range generalRecommendations(0, owned.titles) {
			if len(candidates) >= maxResults {
				break
			}
			if !containsTitle(candidates, b.Title) {
				candidates = append(candidates, b)
			}
		}
		s.metrics.CountRecommendations("backfill")
	} else {
		s.metrics.CountRecommendations("catalog")
	}

	return &domain.RecommendationResult{
		Recommendations: candidates,
		Preferences:     prefs,
	}, nil
}

// inferTaste weighs authors and categories by the shelves their books sit on.
func inferTaste(books []*domain.LibraryEntry) *domain.TastePreferences {
	authors := make(map[string]int)
	categories := make(map[string]int)

	for _, b := range books {
		w := b.Shelf.Weight()
		if b.Author != "" {
			authors[b.Author] += w
		}
		for _, c := range b.Categories {
			categories[strings.ToLower(c)] += w
		}
	}

	return &domain.TastePreferences{
		TopCategories: topPositive(categories, topCategoryCount),
		TopAuthors:    topPositive(authors, topAuthorCount),
		TotalBooks:    len(books),
	}
}

// topPositive takes the n heaviest keys, then drops any without a positive weight.
func topPositive(weights map[string]int, n int) []string {
	type kv struct {
		key    string
		weight int
	}
	all := make([]kv, 0, len(weights))
	for k, w := range weights {
		all = append(all, kv{k, w})
	}
	slices.SortFunc(all, func(a, b kv) int {
		return cmp.Or(cmp.Compare(b.weight, a.weight), cmp.Compare(a.key, b.key))
	})

	out := []string{}
	for i, e := range all {
		if i == n {
			break
		}
		if e.weight > 0 {
			out = append(out, e.key)
		}
	}
	return out
}

func queryTerms(categories []string) []string {
	terms := slices.Clone(categories)
	if len(terms) < minQueryTerms {
		terms = append(terms, fallbackTerms[:paddedTermCount-len(terms)]...)
	}
	return terms
}

type ownership struct {
	titles  map[string]bool
	authors map[string]bool
}

func ownedSet(books []*domain.LibraryEntry) ownership {
	o := ownership{titles: make(map[string]bool), authors: make(map[string]bool)}
	for _, b := range books {
		o.titles[fold(b.Title)] = true
		o.authors[fold(b.Author)] = true
	}
	return o
}

// fetchCandidates queries the first terms concurrently and merges the results in term order.
func (s *RecommendationService) fetchCandidates(ctx context.Context, terms []string, own ownership) []domain.Recommendation {
	if len(terms) > queriedTermCount {
		terms = terms[:queriedTermCount]
	}

	results := make([][]domain.CatalogBook, len(terms))
	g, gctx := errgroup.WithContext(ctx)
	for i, term := range terms {
		g.Go(func() error {
			books, err := s.catalog.Search(gctx, term, googlebooks.SearchOptions{
				MaxResults: resultsPerTerm,
				OrderBy:    googlebooks.OrderRelevance,
			})
			if err != nil {
				s.logger.Warn("recommendation catalog query failed", "term", term, "error", err)
				return nil
			}
			results[i] = books
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors

	var out []domain.Recommendation
	seen := make(map[string]bool)
	for i, term := range terms {
		for _, b := range results[i] {
			title := fold(b.Title)
			if own.titles[title] || own.authors[fold(b.Author)] || seen[title] {
				continue
			}
			seen[title] = true
			out = append(out, fromCatalog(b, fmt.Sprintf(interestReasonText, term)))
		}
	}
	return out
}

func fromCatalog(b domain.CatalogBook, reason string) domain.Recommendation {
	categories := b.Categories
	if categories == nil {
		categories = []string{}
	}
	return domain.Recommendation{
		ID:            "rec_" + b.GoogleID,
		Title:         b.Title,
		Author:        b.Author,
		Description:   shortDescription(b.Description),
		CoverImage:    b.CoverImage,
		PageCount:     b.PageCount,
		Categories:    categories,
		PublishedDate: b.PublishedDate,
		ISBN:          b.ISBN,
		GoogleID:      b.GoogleID,
		Reason:        reason,
	}
}

func shortDescription(d string) string {
	if d == "" {
		return noDescriptionText
	}
	if utf8.RuneCountInString(d) <= descriptionLimit {
		return d
	}
	return string([]rune(d)[:descriptionLimit]) + "..."
}

func (s *RecommendationService) shuffle(recs []domain.Recommendation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(len(recs), func(i, j int) { recs[i], recs[j] = recs[j], recs[i] })
}

// generalRecommendations lists general catalog books, skipping folded titles in exclude.
// limit <= 0 lists them all.
func generalRecommendations(limit int, exclude map[string]bool) []domain.Recommendation {
	out := []domain.Recommendation{}
	for _, b := range domain.GeneralCatalog() {
		if limit > 0 && len(out) == limit {
			break
		}
		if exclude[fold(b.Title)] {
			continue
		}
		out = append(out, domain.RecommendationFromBrowse(b))
	}
	return out
}

func containsTitle(recs []domain.Recommendation, title string) bool {
	t := fold(title)
	for _, r := range recs {
		if fold(r.Title) == t {
			return true
		}
	}
	return false
}
