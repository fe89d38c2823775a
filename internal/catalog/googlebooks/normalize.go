package googlebooks

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"

	"github.com/elewand/elewand-server/internal/domain"
)

// Placeholders for missing volume fields.
const (
	UnknownTitle    = "Unknown Title"
	UnknownAuthor   = "Unknown Author"
	DefaultLanguage = "en"
)

// hasMarkup reports whether s contains at least one HTML element.
func hasMarkup(s string) bool {
	if !strings.Contains(s, "<") {
		return false
	}
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			return true
		}
	}
}

// descriptionToMarkdown converts HTML descriptions to Markdown; plain text passes through.
func descriptionToMarkdown(s string) string {
	if !hasMarkup(s) {
		return s
	}
	md, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(md)
}

func isbnOf(ids []industryIdentifier) string {
	var isbn10 string
	for _, id := range ids {
		switch id.Type {
		case "ISBN_13":
			return id.Identifier
		case "ISBN_10":
			if isbn10 == "" {
				isbn10 = id.Identifier
			}
		}
	}
	return isbn10
}

func coverOf(links *imageLinks) string {
	if links == nil {
		return ""
	}
	cover := links.Thumbnail
	if cover == "" {
		cover = links.SmallThumbnail
	}
	if rest, ok := strings.CutPrefix(cover, "http://"); ok {
		cover = "https://" + rest
	}
	return cover
}

// normalize maps a raw volume onto the catalog record every caller works with.
func normalize(v *volume) domain.CatalogBook {
	info := &v.VolumeInfo

	title := strings.TrimSpace(info.Title)
	if title == "" {
		title = UnknownTitle
	}

	author := UnknownAuthor
	if len(info.Authors) > 0 {
		author = strings.Join(info.Authors, ", ")
	}

	language := info.Language
	if language == "" {
		language = DefaultLanguage
	}

	categories := info.Categories
	if categories == nil {
		categories = []string{}
	}

	return domain.CatalogBook{
		GoogleID:      v.ID,
		Title:         title,
		Author:        author,
		Description:   descriptionToMarkdown(info.Description),
		PageCount:     info.PageCount,
		PublishedDate: info.PublishedDate,
		Publisher:     info.Publisher,
		Language:      language,
		Categories:    categories,
		CoverImage:    coverOf(info.ImageLinks),
		ISBN:          isbnOf(info.IndustryIdentifiers),
	}
}
