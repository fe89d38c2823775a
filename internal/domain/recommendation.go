package domain

// ReasonGeneral marks recommendations that come from the general-interest catalog.
const ReasonGeneral = "general"

// Recommendation is a suggested book the user does not own yet.
type Recommendation struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Description   string   `json:"description"`
	CoverImage    string   `json:"coverImage,omitempty"`
	PageCount     int      `json:"pageCount,omitempty"`
	Categories    []string `json:"categories"`
	PublishedDate string   `json:"publishedDate,omitempty"`
	ISBN          string   `json:"isbn,omitempty"`
	GoogleID      string   `json:"googleId,omitempty"`
	Genre         string   `json:"genre,omitempty"`
	Reason        string   `json:"reason"`
}

// TastePreferences summarizes what the scorer inferred from a library.
type TastePreferences struct {
	TopCategories []string `json:"topCategories"`
	TopAuthors    []string `json:"topAuthors"`
	TotalBooks    int      `json:"totalBooks"`
}

// RecommendationResult is the scorer's output.
// Reason is set to "general" when the whole list comes from the general catalog.
type RecommendationResult struct {
	Recommendations []Recommendation  `json:"recommendations"`
	Preferences     *TastePreferences `json:"preferences,omitempty"`
	Reason          string            `json:"reason,omitempty"`
}

// RecommendationFromBrowse converts a general catalog entry into a recommendation.
func RecommendationFromBrowse(b BrowseBook) Recommendation {
	return Recommendation{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Desc,
		Categories:  []string{b.Genre},
		Genre:       b.Genre,
		Reason:      ReasonGeneral,
	}
}
