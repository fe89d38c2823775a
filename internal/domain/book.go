package domain

import (
	"errors"
	"math"
	"strings"
	"time"
)

// ErrCustomShelfNameRequired is returned when an entry is placed on the custom shelf without a name.
var ErrCustomShelfNameRequired = errors.New("custom shelf name is required")

// ReadingSession is one logged stretch of reading.
type ReadingSession struct {
	Date      time.Time `json:"date"`
	PagesRead int       `json:"pagesRead"`
	TimeSpent int       `json:"timeSpent"` // minutes
	Notes     string    `json:"notes,omitempty"`
}

// ReadingGoal is an optional per-book pace target.
type ReadingGoal struct {
	TargetDate    *time.Time `json:"targetDate,omitempty"`
	DailyPageGoal int        `json:"dailyPageGoal,omitempty"`
}

// LibraryEntry is a book as tracked in one user's personal library.
// It is distinct from any catalog record; GoogleID links back to the catalog when known.
type LibraryEntry struct {
	Base
	UserID string `json:"userId"`

	Title         string   `json:"title"`
	Author        string   `json:"author"`
	ISBN          string   `json:"isbn,omitempty"`
	GoogleID      string   `json:"googleId,omitempty"`
	Description   string   `json:"description,omitempty"`
	CoverImage    string   `json:"coverImage,omitempty"`
	PageCount     int      `json:"pageCount"`
	PublishedDate string   `json:"publishedDate,omitempty"`
	Publisher     string   `json:"publisher,omitempty"`
	Language      string   `json:"language"`
	Categories    []string `json:"categories"`

	Shelf           ShelfName        `json:"shelf"`
	CustomShelfName string           `json:"customShelfName,omitempty"`
	CurrentPage     int              `json:"currentPage"`
	ReadingProgress float64          `json:"readingProgress"`
	StartedReading  *time.Time       `json:"startedReading,omitempty"`
	FinishedReading *time.Time       `json:"finishedReading,omitempty"`
	ReadingTime     int              `json:"readingTime"` // minutes
	ReadingSessions []ReadingSession `json:"readingSessions"`
	ReadingGoal     *ReadingGoal     `json:"readingGoal,omitempty"`

	PersonalRating float64  `json:"personalRating"`
	PersonalNotes  string   `json:"personalNotes,omitempty"`
	Tags           []string `json:"tags"`
	IsPrivate      bool     `json:"isPrivate"`
}

// DefaultLanguage is assigned to entries created without a language.
const DefaultLanguage = "English"

// ApplyDefaults fills in values a freshly created entry must have.
func (e *LibraryEntry) ApplyDefaults() {
	if e.Shelf == "" {
		e.Shelf = ShelfWantToRead
	}
	if e.Language == "" {
		e.Language = DefaultLanguage
	}
	if e.Categories == nil {
		e.Categories = []string{}
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	if e.ReadingSessions == nil {
		e.ReadingSessions = []ReadingSession{}
	}
}

// RecomputeProgress derives ReadingProgress from CurrentPage and PageCount,
// then applies the completion rule. Entries without a page count keep their progress.
func (e *LibraryEntry) RecomputeProgress(now time.Time) {
	if e.PageCount > 0 {
		e.ReadingProgress = math.Min(100, float64(e.CurrentPage)/float64(e.PageCount)*100)
	}
	e.completeIfFinished(now)
}

// completeIfFinished moves a currently-reading entry to read once progress reaches 100.
func (e *LibraryEntry) completeIfFinished(now time.Time) {
	if e.ReadingProgress >= 100 && e.Shelf == ShelfCurrentlyReading {
		e.Shelf = ShelfRead
		e.FinishedReading = &now
	}
}

// MoveTo places the entry on a shelf, stamping reading dates on meaningful transitions.
// Moving onto the shelf the entry already occupies changes nothing but the custom name.
func (e *LibraryEntry) MoveTo(shelf ShelfName, customShelfName string, now time.Time) error {
	customShelfName = strings.TrimSpace(customShelfName)
	if shelf == ShelfCustom && customShelfName == "" {
		return ErrCustomShelfNameRequired
	}

	previous := e.Shelf
	e.Shelf = shelf
	if shelf == ShelfCustom {
		e.CustomShelfName = customShelfName
	} else {
		e.CustomShelfName = ""
	}

	if previous == shelf {
		return nil
	}

	switch shelf {
	case ShelfCurrentlyReading:
		if e.StartedReading == nil {
			e.StartedReading = &now
		}
	case ShelfRead:
		e.FinishedReading = &now
		e.ReadingProgress = 100
		if e.PageCount > 0 {
			e.CurrentPage = e.PageCount
		}
	}
	return nil
}

// LogSession appends a reading session and advances the entry accordingly.
func (e *LibraryEntry) LogSession(s ReadingSession, now time.Time) {
	if s.Date.IsZero() {
		s.Date = now
	}
	e.ReadingSessions = append(e.ReadingSessions, s)

	if s.PagesRead > 0 {
		next := e.CurrentPage + s.PagesRead
		if e.PageCount > 0 && next > e.PageCount {
			next = e.PageCount
		}
		e.CurrentPage = next
	}
	if s.TimeSpent > 0 {
		e.ReadingTime += s.TimeSpent
	}
	if e.StartedReading == nil {
		e.StartedReading = &s.Date
	}

	e.RecomputeProgress(now)
}

// ReadingSpeed is pages per minute of logged reading, 0 with no reading time.
func (e *LibraryEntry) ReadingSpeed() float64 {
	if e.ReadingTime <= 0 {
		return 0
	}
	return float64(e.CurrentPage) / float64(e.ReadingTime)
}

// DaysReading is the number of (partial) days between starting and finishing,
// or between starting and now for unfinished books.
func (e *LibraryEntry) DaysReading(now time.Time) int {
	if e.StartedReading == nil {
		return 0
	}
	end := now
	if e.FinishedReading != nil {
		end = *e.FinishedReading
	}
	days := end.Sub(*e.StartedReading).Hours() / 24
	if days <= 0 {
		return 0
	}
	return int(math.Ceil(days))
}

// OnShelf reports whether the entry belongs to the given shelf.
// For custom shelves the name comparison ignores case.
func (e *LibraryEntry) OnShelf(shelf ShelfName, customShelfName string) bool {
	if e.Shelf != shelf {
		return false
	}
	if shelf != ShelfCustom {
		return true
	}
	return strings.EqualFold(e.CustomShelfName, customShelfName)
}
