package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meghashyamc/roomradar/db/kvdb"
	"github.com/meghashyamc/roomradar/logger"
	"github.com/meghashyamc/roomradar/services/filter"
)

const keySeparator = "/"

var ErrInvalidUserID = errors.New("user id must be non-empty and must not contain '/'")

type Store interface {
	Set(bucket string, key string, value string) error
	Delete(bucket string, key string) error
	GetAllKeys(bucket string) ([]string, error)
	GetByPrefix(bucket string, prefix string) ([]kvdb.KeyValue, error)
}

// Record is one saved search.
type Record struct {
	ID        string               `json:"id"`
	UserID    string               `json:"user_id"`
	Query     string               `json:"query"`
	Filters   filter.Specification `json:"filters"`
	CreatedAt time.Time            `json:"created_at"`
}

type Service struct {
	logger logger.Logger
	store  Store
	now    func() time.Time
}

func New(logger logger.Logger, store Store) *Service {
	return &Service{logger: logger, store: store, now: time.Now}
}

// Save stores a search for userID and returns the stamped record.
func (s *Service) Save(ctx context.Context, userID string, query string, filters filter.Specification) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	if err := validateUserID(userID); err != nil {
		return Record{}, err
	}

	record := Record{
		ID:        uuid.New().String(),
		UserID:    userID,
		Query:     query,
		Filters:   filters,
		CreatedAt: s.now().UTC(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		s.logger.Error("failed to marshal saved search", "user_id", userID, "err", err.Error())
		return Record{}, fmt.Errorf("failed to marshal saved search: %w", err)
	}

	if err := s.store.Set(kvdb.SearchesBucket, recordKey(record), string(data)); err != nil {
		s.logger.Error("failed to save search", "user_id", userID, "err", err.Error())
		return Record{}, fmt.Errorf("failed to save search: %w", err)
	}

	return record, nil
}

// List returns the saved searches of userID, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	pairs, err := s.store.GetByPrefix(kvdb.SearchesBucket, userID+keySeparator)
	if err != nil {
		s.logger.Error("failed to list saved searches", "user_id", userID, "err", err.Error())
		return nil, fmt.Errorf("failed to list saved searches: %w", err)
	}

	records := make([]Record, 0, len(pairs))
	for _, pair := range pairs {
		var record Record
		if err := json.Unmarshal([]byte(pair.Value), &record); err != nil {
			s.logger.Error("skipping undecodable saved search", "key", pair.Key, "err", err.Error())
			continue
		}
		records = append(records, record)
	}

	// Keys sort oldest first
	slices.Reverse(records)
	return records, nil
}

// Prune deletes saved searches created before olderThan and reports how many
// were removed.
func (s *Service) Prune(ctx context.Context, olderThan time.Time) (int, error) {
	keys, err := s.store.GetAllKeys(kvdb.SearchesBucket)
	if err != nil {
		return 0, fmt.Errorf("failed to list saved searches: %w", err)
	}

	cutoff := olderThan.UnixNano()
	removed := 0
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return removed, err
		}

		createdAt, ok := keyTimestamp(key)
		if !ok {
			s.logger.Warn("ignoring malformed saved search key", "key", key)
			continue
		}
		if createdAt >= cutoff {
			continue
		}

		if err := s.store.Delete(kvdb.SearchesBucket, key); err != nil {
			return removed, fmt.Errorf("failed to prune saved search: %w", err)
		}
		removed++
	}

	return removed, nil
}

func validateUserID(userID string) error {
	if userID == "" || strings.Contains(userID, keySeparator) {
		return ErrInvalidUserID
	}
	return nil
}

// Zero-padded nanoseconds keep a user's records in creation order.
func recordKey(record Record) string {
	return fmt.Sprintf("%s%s%020d%s%s", record.UserID, keySeparator, record.CreatedAt.UnixNano(), keySeparator, record.ID)
}

func keyTimestamp(key string) (int64, bool) {
	parts := strings.Split(key, keySeparator)
	if len(parts) != 3 {
		return 0, false
	}
	ts, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return ts, true
}
