package domain

import "time"

// ShelfName identifies which shelf a library entry sits on.
type ShelfName string

// Known shelves. Custom entries additionally carry a CustomShelfName.
const (
	ShelfWantToRead       ShelfName = "want-to-read"
	ShelfCurrentlyReading ShelfName = "currently-reading"
	ShelfRead             ShelfName = "read"
	ShelfFavorites        ShelfName = "favorites"
	ShelfDNF              ShelfName = "dnf"
	ShelfCustom           ShelfName = "custom"
)

// DefaultShelf describes one of the fixed, non-persisted shelves.
type DefaultShelf struct {
	Name        ShelfName `json:"name"`
	DisplayName string    `json:"displayName"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
}

// Order matters: listings show default shelves in this order.
var defaultShelves = []DefaultShelf{
	{Name: ShelfWantToRead, DisplayName: "Want to Read", Icon: "📚", Color: "#4285f4"},
	{Name: ShelfCurrentlyReading, DisplayName: "Currently Reading", Icon: "📖", Color: "#34a853"},
	{Name: ShelfRead, DisplayName: "Read", Icon: "✅", Color: "#fbbc04"},
	{Name: ShelfFavorites, DisplayName: "Favorites", Icon: "⭐", Color: "#ea4335"},
	{Name: ShelfDNF, DisplayName: "Did Not Finish", Icon: "⏸️", Color: "#9aa0a6"},
}

// DefaultShelves returns the five default shelves in display order.
func DefaultShelves() []DefaultShelf {
	out := make([]DefaultShelf, len(defaultShelves))
	copy(out, defaultShelves)
	return out
}

// ShelfNames returns every valid shelf name, custom last.
func ShelfNames() []string {
	names := make([]string, 0, len(defaultShelves)+1)
	for _, s := range defaultShelves {
		names = append(names, string(s.Name))
	}
	return append(names, string(ShelfCustom))
}

// IsValid reports whether s is a known shelf.
func (s ShelfName) IsValid() bool {
	return s == ShelfCustom || s.IsDefault()
}

// IsDefault reports whether s is one of the five default shelves.
func (s ShelfName) IsDefault() bool {
	for _, d := range defaultShelves {
		if d.Name == s {
			return true
		}
	}
	return false
}

// Weight is the taste signal contributed by a book on this shelf.
func (s ShelfName) Weight() int {
	switch s {
	case ShelfFavorites:
		return 5
	case ShelfRead:
		return 3
	case ShelfCurrentlyReading:
		return 2
	case ShelfWantToRead:
		return 1
	case ShelfDNF:
		return -3
	default:
		return 0
	}
}

// Shelf is a user-defined custom shelf. Names are unique per owner, case-insensitively.
type Shelf struct {
	Base
	OwnerID     string `json:"userId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	IsPrivate   bool   `json:"isPrivate"`
	SortOrder   int    `json:"sortOrder"`
	YearlyGoal  int    `json:"yearlyGoal,omitempty"`
}

// Defaults applied to new custom shelves.
const (
	DefaultShelfColor = "#4285f4"
	DefaultShelfIcon  = "📚"
)

// ShelfSummary is a shelf as shown in listings, default or custom, with its live book count.
type ShelfSummary struct {
	ID          string     `json:"id,omitempty"`
	Name        string     `json:"name"`
	DisplayName string     `json:"displayName"`
	Description string     `json:"description,omitempty"`
	Icon        string     `json:"icon"`
	Color       string     `json:"color"`
	IsDefault   bool       `json:"isDefault"`
	IsPrivate   bool       `json:"isPrivate"`
	SortOrder   int        `json:"sortOrder"`
	YearlyGoal  int        `json:"yearlyGoal,omitempty"`
	BookCount   int        `json:"bookCount"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}
