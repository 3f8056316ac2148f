package search

import (
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/revdex/revdex/internal/domain"
)

// IndexDirName is the name of the index directory under the base dir.
const IndexDirName = "index.bleve"

// Writer is the indexing backend surface the batch run depends on.
// Reconstruction and document assembly never see bleve types, so a
// different backend or backend version is a new implementation of this
// interface, not a branch in the indexing code.
type Writer interface {
	// DeleteDocument removes the document with the given id, a no-op
	// when it is not indexed.
	DeleteDocument(id string) error

	// AddDocument indexes the document, replacing any existing document
	// with the same id.
	AddDocument(doc domain.ReviewDocument) error

	// DocCount returns the number of indexed documents.
	DocCount() (uint64, error)

	Close() error
}

// CreateIndexMapping builds the Bleve mapping for review documents.
func CreateIndexMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	// ID - stored for retrieval, not searchable (lookups use the
	// document ID).
	idField := bleve.NewTextFieldMapping()
	idField.Index = false
	idField.Store = true
	docMapping.AddFieldMappingsAt(domain.DocFieldID, idField)

	// Summary - analyzed, stored for result display.
	summaryField := bleve.NewTextFieldMapping()
	summaryField.Analyzer = standard.Name
	summaryField.Store = true
	docMapping.AddFieldMappingsAt(domain.DocFieldSummary, summaryField)

	// Username - exact match, stored.
	usernameField := bleve.NewTextFieldMapping()
	usernameField.Analyzer = keyword.Name
	usernameField.Store = true
	docMapping.AddFieldMappingsAt(domain.DocFieldUsername, usernameField)

	// Comment - analyzed, stored with term vectors for highlighting.
	commentField := bleve.NewTextFieldMapping()
	commentField.Analyzer = standard.Name
	commentField.Store = true
	commentField.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt(domain.DocFieldComment, commentField)

	// Remaining searchable fields - analyzed, not stored.
	for _, name := range []string{
		domain.DocFieldChangenum,
		domain.DocFieldBug,
		domain.DocFieldAuthor,
		domain.DocFieldFile,
		domain.DocFieldText,
	} {
		field := bleve.NewTextFieldMapping()
		field.Analyzer = standard.Name
		docMapping.AddFieldMappingsAt(name, field)
	}

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = standard.Name
	indexMapping.DefaultField = domain.DocFieldText

	return indexMapping
}

// OpenWriter opens the index for writing, creating it if needed. With
// truncate set, any existing index is removed first (full rebuild).
func OpenWriter(path string, truncate bool) (Writer, error) {
	if truncate {
		if err := os.RemoveAll(path); err != nil {
			return nil, fmt.Errorf("remove existing index: %w", err)
		}
	}

	index, err := bleve.Open(path)
	if err == nil {
		return &bleveWriter{index: index}, nil
	}

	index, err = bleve.New(path, CreateIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &bleveWriter{index: index}, nil
}

// OpenForRead opens an existing index read-only for serving searches.
func OpenForRead(path string) (bleve.Index, error) {
	index, err := bleve.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	return index, nil
}

type bleveWriter struct {
	index bleve.Index
}

func (w *bleveWriter) DeleteDocument(id string) error {
	return w.index.Delete(id)
}

func (w *bleveWriter) AddDocument(doc domain.ReviewDocument) error {
	return w.index.Index(doc.ID, doc)
}

func (w *bleveWriter) DocCount() (uint64, error) {
	return w.index.DocCount()
}

func (w *bleveWriter) Close() error {
	return w.index.Close()
}
