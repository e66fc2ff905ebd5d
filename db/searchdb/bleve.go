package searchdb

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/meghashyamc/roomradar/config"
	"github.com/meghashyamc/roomradar/logger"
)

const IndexingBatchSize = 100

const (
	indexFieldStatus  = "status"
	indexFieldGeohash = "geohash"
	indexFieldSource  = "source"
)

type BleveDB struct {
	indexPath string
	logger    logger.Logger
	index     bleve.Index
}

func New(logger logger.Logger, cfg *config.Config) (*BleveDB, error) {
	mapping := createIndexMapping()
	indexPath := filepath.Join(cfg.GetStoragePath(), cfg.GetIndexPath())
	index, err := bleve.New(indexPath, mapping)
	if err != nil {
		index, err = bleve.Open(indexPath)
		if err != nil {
			logger.Error("could not open index", "path", indexPath, "err", err.Error())
			return nil, err
		}
	}
	return &BleveDB{indexPath: indexPath, logger: logger, index: index}, nil
}

func (b *BleveDB) BuildIndex(documents []*Document) error {

	batch := b.index.NewBatch()

	for i, doc := range documents {

		if err := batch.Index(doc.ID, doc); err != nil {
			b.logger.Error("could not index document", "id", doc.ID, "err", err.Error())
			return err
		}

		if (i+1)%IndexingBatchSize == 0 {
			if err := b.index.Batch(batch); err != nil {
				return err
			}
			batch = b.index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := b.index.Batch(batch); err != nil {
			b.logger.Error("could not index documents", "err", err.Error())
			return err
		}
	}

	return nil
}

func createIndexMapping() mapping.IndexMapping {

	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	for _, field := range []string{indexFieldStatus, indexFieldGeohash} {
		keywordFieldMapping := bleve.NewTextFieldMapping()
		keywordFieldMapping.Analyzer = keyword.Name
		keywordFieldMapping.IncludeInAll = false
		docMapping.AddFieldMappingsAt(field, keywordFieldMapping)
	}

	// Stored for retrieval only
	sourceFieldMapping := bleve.NewTextFieldMapping()
	sourceFieldMapping.Index = false
	sourceFieldMapping.Store = true
	sourceFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt(indexFieldSource, sourceFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}

// FindByStatus returns every document with the given status, ordered by id.
func (b *BleveDB) FindByStatus(status string) (*Response, error) {
	return b.find(b.statusQuery(status), "status", status)
}

// FindByStatusInCells returns the documents with the given status whose
// geohash starts with one of cells, ordered by id. Documents without a
// geohash never match.
func (b *BleveDB) FindByStatusInCells(status string, cells []string) (*Response, error) {
	if len(cells) == 0 {
		return &Response{Results: []Result{}}, nil
	}

	cellQueries := make([]query.Query, 0, len(cells))
	for _, cell := range cells {
		cellQuery := bleve.NewPrefixQuery(cell)
		cellQuery.SetField(indexFieldGeohash)
		cellQueries = append(cellQueries, cellQuery)
	}

	return b.find(bleve.NewConjunctionQuery(b.statusQuery(status), bleve.NewDisjunctionQuery(cellQueries...)), "status", status, "cells", cells)
}

func (b *BleveDB) statusQuery(status string) query.Query {
	statusQuery := bleve.NewTermQuery(status)
	statusQuery.SetField(indexFieldStatus)
	return statusQuery
}

func (b *BleveDB) find(q query.Query, logArgs ...any) (*Response, error) {
	start := time.Now()

	total, err := b.index.DocCount()
	if err != nil {
		b.logger.Error("could not count documents", "err", err.Error())
		return nil, fmt.Errorf("could not count documents: %w", err)
	}
	if total == 0 {
		return &Response{Results: []Result{}, SearchTime: time.Since(start).String()}, nil
	}

	searchRequest := bleve.NewSearchRequestOptions(q, int(total), 0, false)
	searchRequest.Fields = []string{indexFieldSource}
	searchRequest.SortBy([]string{"_id"})

	searchResult, err := b.index.Search(searchRequest)
	if err != nil {
		b.logger.Error("search failed", append(logArgs, "err", err.Error())...)
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]Result, 0, len(searchResult.Hits))
	for _, hit := range searchResult.Hits {
		result := Result{ID: hit.ID}
		if source, ok := hit.Fields[indexFieldSource].(string); ok {
			result.Source = source
		}
		results = append(results, result)
	}

	return &Response{
		Results:    results,
		Total:      searchResult.Total,
		SearchTime: time.Since(start).String(),
	}, nil
}

func (b *BleveDB) DeleteDocuments(documentIDs []string) error {
	batch := b.index.NewBatch()

	for i, docID := range documentIDs {
		batch.Delete(docID)

		if (i+1)%IndexingBatchSize == 0 {
			if err := b.index.Batch(batch); err != nil {
				return err
			}
			batch = b.index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := b.index.Batch(batch); err != nil {
			b.logger.Error("could not delete documents", "err", err.Error())
			return err
		}
	}

	return nil
}

func (b *BleveDB) GetDocCount() (uint64, error) {
	return b.index.DocCount()
}

func (b *BleveDB) Close() error {

	if b.index != nil {
		if err := b.index.Close(); err != nil {
			b.logger.Error("could not close search index", "err", err.Error())
			return err
		}
	}
	return nil
}
