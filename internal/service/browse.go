package service

import (
	"math"
	"strconv"
	"strings"

	"github.com/elewand/elewand-server/internal/domain"
)

// DefaultBrowseLimit is used when neither limit nor score is given.
const DefaultBrowseLimit = 6

// BrowseQuery mirrors the loosely typed inputs of the general browse endpoint.
type BrowseQuery struct {
	Genre string
	Limit string
	Score string
}

// Browse returns books from the general catalog, optionally filtered by genre.
// A positive integer limit wins; otherwise a numeric score picks max(1, round(score/10)).
func Browse(q BrowseQuery) []domain.BrowseBook {
	limit := browseLimit(q.Limit, q.Score)
	genre := strings.TrimSpace(q.Genre)

	out := []domain.BrowseBook{}
	for _, b := range domain.GeneralCatalog() {
		if genre != "" && b.Genre != genre {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, b)
	}
	return out
}

func browseLimit(rawLimit, rawScore string) int {
	if rawLimit != "" {
		if l, err := strconv.Atoi(strings.TrimSpace(rawLimit)); err == nil && l > 0 {
			return l
		}
		return DefaultBrowseLimit
	}
	if rawScore != "" {
		if s, err := strconv.ParseFloat(strings.TrimSpace(rawScore), 64); err == nil && !math.IsNaN(s) && !math.IsInf(s, 0) {
			return max(1, int(math.Floor(s/10+0.5)))
		}
	}
	return DefaultBrowseLimit
}
