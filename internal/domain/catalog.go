package domain

// CatalogBook is a normalized volume from the external book catalog.
type CatalogBook struct {
	GoogleID      string   `json:"googleId"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Description   string   `json:"description"`
	PageCount     int      `json:"pageCount"`
	PublishedDate string   `json:"publishedDate"`
	Publisher     string   `json:"publisher"`
	Language      string   `json:"language"`
	Categories    []string `json:"categories"`
	CoverImage    string   `json:"coverImage"`
	ISBN          string   `json:"isbn"`
}

// Genre keys used by the general-interest catalog and the preference vector.
const (
	GenreCrimeThriller = "crimeThriller"
	GenreHorror        = "horror"
	GenreFantasy       = "fantasy"
	GenrePhilosophy    = "philosophy"
)

// BrowseBook is an entry of the fixed general-interest catalog.
type BrowseBook struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Genre  string `json:"genre"`
	Desc   string `json:"desc"`
}

var generalCatalog = []BrowseBook{
	{ID: "b1", Title: "The Silent Patient", Author: "Alex Michaelides", Genre: GenreCrimeThriller,
		Desc: "A psychological thriller about a woman who stopped speaking after a violent act."},
	{ID: "b2", Title: "Gone Girl", Author: "Gillian Flynn", Genre: GenreCrimeThriller,
		Desc: "A twisty thriller about a missing wife and secrets."},
	{ID: "b3", Title: "It", Author: "Stephen King", Genre: GenreHorror,
		Desc: "A group of friends face a terrifying entity in their small town."},
	{ID: "b4", Title: "The Haunting of Hill House", Author: "Shirley Jackson", Genre: GenreHorror,
		Desc: "A classic eerie haunted-house story."},
	{ID: "b5", Title: "The Hobbit", Author: "J.R.R. Tolkien", Genre: GenreFantasy,
		Desc: "Bilbo Baggins goes on an unexpected adventure."},
	{ID: "b6", Title: "The Name of the Wind", Author: "Patrick Rothfuss", Genre: GenreFantasy,
		Desc: "An epic tale of a young magician and storyteller."},
	{ID: "b7", Title: "Meditations", Author: "Marcus Aurelius", Genre: GenrePhilosophy,
		Desc: "Stoic reflections and practical wisdom."},
	{ID: "b8", Title: "The Republic", Author: "Plato", Genre: GenrePhilosophy,
		Desc: "A foundational work of political philosophy and justice."},
}

// GeneralCatalog returns a copy of the fixed general-interest catalog in its canonical order.
func GeneralCatalog() []BrowseBook {
	out := make([]BrowseBook, len(generalCatalog))
	copy(out, generalCatalog)
	return out
}
