package domain

// ReadingStats summarizes one user's library.
type ReadingStats struct {
	TotalBooks        int               `json:"totalBooks"`
	BooksRead         int               `json:"booksRead"`
	CurrentlyReading  int               `json:"currentlyReading"`
	TotalPages        int               `json:"totalPages"`
	PagesRead         int               `json:"pagesRead"`
	TotalReadingTime  int               `json:"totalReadingTime"`
	AverageRating     float64           `json:"averageRating"`
	BooksThisYear     int               `json:"booksThisYear"`
	PagesThisYear     int               `json:"pagesThisYear"`
	ReadingEfficiency float64           `json:"readingEfficiency"`
	ShelfCounts       map[ShelfName]int `json:"shelfCounts"`
}

// ActivityStats is the compact activity summary shown on a profile.
type ActivityStats struct {
	TotalBooks            int     `json:"totalBooks"`
	CompletedBooks        int     `json:"completedBooks"`
	CurrentlyReadingBooks int     `json:"currentlyReadingBooks"`
	TotalRatings          int     `json:"totalRatings"`
	AverageRating         float64 `json:"averageRating"`
}

// AdminStats is the instance-wide summary for administrators.
type AdminStats struct {
	TotalUsers   int              `json:"totalUsers"`
	TotalBooks   int              `json:"totalBooks"`
	TotalRatings int              `json:"totalRatings"`
	ProfileSums  PreferenceVector `json:"profileSums"`
}
