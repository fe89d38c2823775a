package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// DefaultLimit caps library searches when the caller passes no limit.
const DefaultLimit = 100

// Hit is one matching library entry.
type Hit struct {
	ID    string
	Score float64
}

// SearchLibrary finds a user's entries matching text, best match first.
// An empty text matches nothing.
func (s *SearchIndex) SearchLibrary(ctx context.Context, userID, text string, limit int) ([]Hit, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	owner := bleve.NewTermQuery(userID)
	owner.SetField("user_id")

	q := bleve.NewConjunctionQuery(owner, textQuery(text))
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)

	s.mu.RLock()
	defer s.mu.RUnlock()

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, Hit{ID: h.ID, Score: h.Score})
	}
	return hits, nil
}

// textQuery matches text against every searchable field, weighting title and author highest.
func textQuery(text string) query.Query {
	match := func(field string, boost float64) query.Query {
		m := bleve.NewMatchQuery(text)
		m.SetField(field)
		m.SetBoost(boost)
		return m
	}

	queries := []query.Query{
		match("title", 3.0),
		match("author", 2.0),
		match("categories", 1.2),
		match("publisher", 0.8),
		match("description", 0.5),
	}

	tag := bleve.NewTermQuery(strings.ToLower(text))
	tag.SetField("tags")
	tag.SetBoost(1.5)
	queries = append(queries, tag)

	fuzzy := bleve.NewFuzzyQuery(strings.ToLower(text))
	fuzzy.SetField("title")
	fuzzy.SetFuzziness(1)
	fuzzy.SetBoost(0.8)
	queries = append(queries, fuzzy)

	if len(text) >= 2 {
		prefix := bleve.NewPrefixQuery(strings.ToLower(text))
		prefix.SetField("title")
		prefix.SetBoost(0.5)
		queries = append(queries, prefix)
	}

	return bleve.NewDisjunctionQuery(queries...)
}
