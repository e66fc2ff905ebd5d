package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/meghashyamc/roomradar/db/kvdb"
	"github.com/meghashyamc/roomradar/db/searchdb"
	"github.com/meghashyamc/roomradar/geo"
	"github.com/meghashyamc/roomradar/logger"
	"github.com/meghashyamc/roomradar/property"
	"github.com/mmcloughlin/geohash"
)

// Indexer represents the search database operations the catalog needs
type Indexer interface {
	BuildIndex(documents []*searchdb.Document) error
	DeleteDocuments(documentIDs []string) error
	FindByStatus(status string) (*searchdb.Response, error)
	FindByStatusInCells(status string, cells []string) (*searchdb.Response, error)
}

type StatusStore interface {
	Set(bucket string, key string, value string) error
	Get(bucket string, key string) (string, error)
}

const (
	ProgressStatusQueued   = 0
	ProgressStatusStep1    = 10
	ProgressStatusComplete = 100
	ProgressStatusFailed   = -1

	// Precision of the geohash cell stored with each listing (about 150m).
	geohashPrecision = 7
	maxImportTime    = 30 * time.Minute
)

var (
	ErrImportInProgress = errors.New("import already in progress")
	ErrStopped          = errors.New("catalog service stopped")
)

type Service struct {
	logger      logger.Logger
	indexer     Indexer
	statusStore StatusStore
	importC     chan importRequest
	busy        chan struct{}
	stopped     chan struct{}
}

type importRequest struct {
	records   []property.Record
	requestID string
}

func New(ctx context.Context, logger logger.Logger, indexer Indexer, statusStore StatusStore) *Service {
	catalogService := &Service{
		logger:      logger,
		indexer:     indexer,
		statusStore: statusStore,
		importC:     make(chan importRequest),
		busy:        make(chan struct{}, 1),
		stopped:     make(chan struct{}),
	}

	go catalogService.run(ctx)
	return catalogService
}

// Import queues records for indexing. Only one import runs at a time.
func (s *Service) Import(records []property.Record, requestID string) error {

	select {
	case s.busy <- struct{}{}:
	default:
		s.logger.Warn("request to import while an import is already in progress", "request_id", requestID)
		return ErrImportInProgress
	}

	s.setRequestStatus(requestID, ProgressStatusQueued)

	select {
	// This leads to s.doImport being called
	case s.importC <- importRequest{records: records, requestID: requestID}:
		return nil
	case <-s.stopped:
		<-s.busy
		s.setRequestStatus(requestID, ProgressStatusFailed)
		return ErrStopped
	}
}

// GetStatus retrieves the progress of an import request
func (s *Service) GetStatus(requestID string) (int, error) {
	value, err := s.statusStore.Get(kvdb.RequestsBucket, requestID)
	if err != nil {
		return 0, fmt.Errorf("request not found: %w", err)
	}

	status, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid status value: %w", err)
	}

	return status, nil
}

// Candidates returns every live listing in the catalog, ordered by id.
func (s *Service) Candidates(ctx context.Context) ([]property.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	response, err := s.indexer.FindByStatus(property.StatusLive)
	if err != nil {
		return nil, fmt.Errorf("could not list live properties: %w", err)
	}
	return s.decode(response), nil
}

// CandidatesNear returns the live listings that may lie within radiusKm of
// center, ordered by id. It narrows the listing by geohash cell only, so
// callers still apply the exact distance check. Listings without coordinates
// are never returned. Where no cell cover exists it returns every live
// listing.
func (s *Service) CandidatesNear(ctx context.Context, center geo.Coordinate, radiusKm float64) ([]property.Record, error) {
	cells := coveringCells(center, radiusKm)
	if cells == nil {
		return s.Candidates(ctx)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	response, err := s.indexer.FindByStatusInCells(property.StatusLive, cells)
	if err != nil {
		return nil, fmt.Errorf("could not list live properties near %v: %w", center, err)
	}
	return s.decode(response), nil
}

func (s *Service) decode(response *searchdb.Response) []property.Record {
	records := make([]property.Record, 0, len(response.Results))
	for _, result := range response.Results {
		var record property.Record
		if err := json.Unmarshal([]byte(result.Source), &record); err != nil {
			s.logger.Error("skipping undecodable property", "id", result.ID, "err", err.Error())
			continue
		}
		records = append(records, record)
	}
	return records
}

// Delete removes listings from the catalog.
func (s *Service) Delete(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.indexer.DeleteDocuments(ids); err != nil {
		s.logger.Error("failed to delete properties from search index", "err", err.Error())
		return fmt.Errorf("failed to delete properties from search index: %w", err)
	}
	return nil
}

func (s *Service) run(ctx context.Context) {
	defer close(s.stopped)

	for {
		select {
		case req := <-s.importC:
			importCtx, cancel := context.WithTimeout(ctx, maxImportTime)
			s.doImport(importCtx, req.records, req.requestID)
			cancel()
			<-s.busy
		case <-ctx.Done():
			s.logger.Info("catalog service stopped", "reason", ctx.Err())
			return
		}
	}
}

func (s *Service) doImport(ctx context.Context, records []property.Record, requestID string) {
	s.logger.Info("importing properties...", "request_id", requestID, "count", len(records))

	documents := make([]*searchdb.Document, 0, len(records))
	for _, record := range records {
		doc, err := toDocument(record)
		if err != nil {
			s.logger.Error("failed to import properties", "request_id", requestID, "id", record.ID, "err", err.Error())
			s.setRequestStatus(requestID, ProgressStatusFailed)
			return
		}
		documents = append(documents, doc)
	}

	// Update progress to ProgressStatusStep1% once every record is converted
	s.setRequestStatus(requestID, ProgressStatusStep1)

	for start := 0; start < len(documents); start += searchdb.IndexingBatchSize {
		if ctx.Err() != nil {
			s.logger.Error("import cancelled", "request_id", requestID, "err", ctx.Err())
			s.setRequestStatus(requestID, ProgressStatusFailed)
			return
		}

		end := min(start+searchdb.IndexingBatchSize, len(documents))
		if err := s.indexer.BuildIndex(documents[start:end]); err != nil {
			s.logger.Error("failed to index properties", "request_id", requestID, "err", err.Error())
			s.setRequestStatus(requestID, ProgressStatusFailed)
			return
		}

		s.setRequestStatus(requestID, getProgressPercentage(end, len(documents), ProgressStatusStep1, ProgressStatusComplete))
	}

	s.setRequestStatus(requestID, ProgressStatusComplete)
	s.logger.Info("finished importing properties", "request_id", requestID, "count", len(documents))
}

func toDocument(record property.Record) (*searchdb.Document, error) {
	source, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("could not encode property: %w", err)
	}

	doc := &searchdb.Document{
		ID:     record.ID,
		Status: record.Status,
		Source: string(source),
	}
	if record.Coordinate != nil {
		doc.Geohash = geohash.EncodeWithPrecision(record.Coordinate.Latitude, record.Coordinate.Longitude, geohashPrecision)
	}
	return doc, nil
}

func (s *Service) setRequestStatus(requestID string, status int) {
	if err := s.statusStore.Set(kvdb.RequestsBucket, requestID, strconv.Itoa(status)); err != nil {
		s.logger.Error("failed to update request status", "request_id", requestID, "progress", status, "err", err.Error())
	}
}

func getProgressPercentage(done int, total int, initial int, final int) int {
	if done == 0 || total == 0 {
		return initial
	}

	if done >= total {
		return final
	}

	// Calculate the percentage between initial and final
	progress := float64(done) / float64(total)
	result := float64(initial) + progress*float64(final-initial)

	return int(result)

}
