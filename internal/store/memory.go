package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/i474232898/air-quality-collector/internal/airquality"
)

var (
	// ErrNotFound is returned when no measurements exist for a location.
	ErrNotFound = errors.New("no measurements for location")
)

// recordHistory holds a time-ordered list of records for one location.
type recordHistory struct {
	Records []airquality.Record
}

// MemoryStore is a concurrency-safe in-memory implementation of the
// measurement store, used when no database is configured and in tests.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location id, value: history
	data map[string]*recordHistory

	maxHistory int           // max number of records per location (<= 0 = unlimited)
	maxAge     time.Duration // max age of records (0 = unlimited)
}

// NewMemoryStore creates a MemoryStore with optional retention limits.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*recordHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// Insert appends a record for its location and enforces retention.
func (s *MemoryStore) Insert(_ context.Context, rec airquality.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[rec.LocationID]
	if !ok {
		history = &recordHistory{}
		s.data[rec.LocationID] = history
	}

	history.Records = append(history.Records, rec)

	if s.maxHistory > 0 && len(history.Records) > s.maxHistory {
		over := len(history.Records) - s.maxHistory
		history.Records = history.Records[over:]
	}

	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Records); i++ {
			if !history.Records[i].Timestamp.Before(cutoff) {
				break
			}
		}
		if i > 0 && i < len(history.Records) {
			history.Records = history.Records[i:]
		}
	}

	return nil
}

// Latest returns the most recent record for a location.
func (s *MemoryStore) Latest(_ context.Context, locationID string) (airquality.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[locationID]
	if !ok || len(history.Records) == 0 {
		return airquality.Record{}, ErrNotFound
	}
	return history.Records[len(history.Records)-1], nil
}

// Range returns all records for a location between from and to (inclusive).
func (s *MemoryStore) Range(_ context.Context, locationID string, from, to time.Time) ([]airquality.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[locationID]
	if !ok || len(history.Records) == 0 {
		return nil, ErrNotFound
	}

	var result []airquality.Record
	for _, rec := range history.Records {
		if !rec.Timestamp.Before(from) && !rec.Timestamp.After(to) {
			result = append(result, rec)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}
