package domain

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Rating is one user's score and comment for a catalog book.
// BookTitle, BookAuthor, BookCover and UserName are snapshots taken at write time;
// later changes to the user or the catalog do not update existing ratings.
type Rating struct {
	Base
	UserID     string `json:"userId"`
	UserName   string `json:"userName"`
	BookID     string `json:"bookId"`
	BookTitle  string `json:"bookTitle"`
	BookAuthor string `json:"bookAuthor"`
	BookCover  string `json:"bookCover,omitempty"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
}

// Rating bounds and limits.
const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 1000
)

// BookRatingEntry is a single rating as listed under a book.
type BookRatingEntry struct {
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// BookRatingStats aggregates every rating of one book.
type BookRatingStats struct {
	BookID        string            `json:"bookId"`
	AverageRating float64           `json:"averageRating"`
	TotalRatings  int               `json:"totalRatings"`
	Ratings       []BookRatingEntry `json:"ratings"`
}

// RatingComment is a non-empty comment in the catalog-wide listing.
type RatingComment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Rating    int       `json:"rating"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// RatedBook is one book in the catalog-wide ratings listing.
type RatedBook struct {
	BookID        string          `json:"bookId"`
	BookTitle     string          `json:"bookTitle"`
	BookAuthor    string          `json:"bookAuthor"`
	BookCover     string          `json:"bookCover,omitempty"`
	AverageRating float64         `json:"averageRating"`
	TotalRatings  int             `json:"totalRatings"`
	LatestRating  time.Time       `json:"latestRating"`
	Comments      []RatingComment `json:"comments"`
}

// RatingSort selects the order of the catalog-wide listing.
type RatingSort string

const (
	RatingSortRating RatingSort = "rating"
	RatingSortRecent RatingSort = "recent"
)

// Round1 rounds half up to one decimal place.
func Round1(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}

// sortByCreated orders ratings oldest first; ties keep ID order for stable output.
func sortByCreated(ratings []*Rating) []*Rating {
	sorted := make([]*Rating, len(ratings))
	copy(sorted, ratings)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

// AggregateBookRatings computes the stats for a single book from its ratings.
// Ratings for other books are ignored.
func AggregateBookRatings(bookID string, ratings []*Rating) BookRatingStats {
	stats := BookRatingStats{BookID: bookID, Ratings: []BookRatingEntry{}}

	sum := 0
	for _, r := range sortByCreated(ratings) {
		if r.BookID != bookID {
			continue
		}
		sum += r.Rating
		stats.TotalRatings++
		stats.Ratings = append(stats.Ratings, BookRatingEntry{
			UserID:    r.UserID,
			UserName:  r.UserName,
			Rating:    r.Rating,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
		})
	}

	if stats.TotalRatings > 0 {
		stats.AverageRating = Round1(float64(sum) / float64(stats.TotalRatings))
	}
	return stats
}

// AggregateRatedBooks groups ratings by book for the catalog-wide listing.
// The book snapshot comes from the earliest rating. limit <= 0 means no limit.
func AggregateRatedBooks(ratings []*Rating, order RatingSort, limit int) []RatedBook {
	type group struct {
		book  RatedBook
		sum   int
		exact float64
	}

	groups := make(map[string]*group)
	var keys []string

	for _, r := range sortByCreated(ratings) {
		g, ok := groups[r.BookID]
		if !ok {
			g = &group{book: RatedBook{
				BookID:     r.BookID,
				BookTitle:  r.BookTitle,
				BookAuthor: r.BookAuthor,
				BookCover:  r.BookCover,
				Comments:   []RatingComment{},
			}}
			groups[r.BookID] = g
			keys = append(keys, r.BookID)
		}

		g.sum += r.Rating
		g.book.TotalRatings++
		if r.CreatedAt.After(g.book.LatestRating) {
			g.book.LatestRating = r.CreatedAt
		}
		if strings.TrimSpace(r.Comment) != "" {
			g.book.Comments = append(g.book.Comments, RatingComment{
				ID:        r.ID,
				UserID:    r.UserID,
				UserName:  r.UserName,
				Rating:    r.Rating,
				Text:      r.Comment,
				CreatedAt: r.CreatedAt,
			})
		}
	}

	all := make([]*group, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		g.exact = float64(g.sum) / float64(g.book.TotalRatings)
		g.book.AverageRating = Round1(g.exact)
		all = append(all, g)
	}

	switch order {
	case RatingSortRecent:
		sort.SliceStable(all, func(i, j int) bool {
			return all[i].book.LatestRating.After(all[j].book.LatestRating)
		})
	default:
		sort.SliceStable(all, func(i, j int) bool {
			if all[i].exact != all[j].exact {
				return all[i].exact > all[j].exact
			}
			return all[i].book.TotalRatings > all[j].book.TotalRatings
		})
	}

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	out := make([]RatedBook, len(all))
	for i, g := range all {
		out[i] = g.book
	}
	return out
}
