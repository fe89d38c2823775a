package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

func textField(analyzer string, store bool) *mapping.FieldMapping {
	f := bleve.NewTextFieldMapping()
	f.Analyzer = analyzer
	f.Store = store
	return f
}

// buildIndexMapping creates the Bleve mapping for library entries.
// Prose fields use English stemming, names use the simple analyzer, and
// owner, shelf and tags are exact keywords for filtering.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	doc := bleve.NewDocumentMapping()

	title := textField(en.AnalyzerName, true)
	title.IncludeTermVectors = true
	doc.AddFieldMappingsAt("title", title)

	doc.AddFieldMappingsAt("author", textField(simple.Name, true))
	doc.AddFieldMappingsAt("publisher", textField(simple.Name, false))
	doc.AddFieldMappingsAt("description", textField(en.AnalyzerName, false))
	doc.AddFieldMappingsAt("categories", textField(en.AnalyzerName, false))

	doc.AddFieldMappingsAt("id", textField(keyword.Name, true))
	doc.AddFieldMappingsAt("user_id", textField(keyword.Name, false))
	doc.AddFieldMappingsAt("shelf", textField(keyword.Name, false))
	doc.AddFieldMappingsAt("tags", textField(keyword.Name, false))

	indexMapping.AddDocumentMapping("_default", doc)
	return indexMapping
}
