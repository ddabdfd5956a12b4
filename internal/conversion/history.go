package conversion

import (
	"context"
	"sync"
)

// HistoryStore persists the one-record-per-lead conversion history.
// InsertIfAbsent is the atomicity point of the whole conversion flow:
// implementations must guarantee that for a given key exactly one caller
// observes inserted == true, ever.
type HistoryStore interface {
	// Has reports whether a conversion record exists for the key.
	Has(ctx context.Context, leadKey string) (bool, error)
	// InsertIfAbsent writes the record unless one already exists for the
	// key. It returns whether this call performed the insert.
	InsertIfAbsent(ctx context.Context, rec Record) (inserted bool, err error)
	// Get returns the record for the key, and whether one exists.
	Get(ctx context.Context, leadKey string) (Record, bool, error)
}

// MemoryHistoryStore is a map-backed HistoryStore for tests and for
// deployments that accept history loss on restart.
type MemoryHistoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{records: make(map[string]Record)}
}

func (s *MemoryHistoryStore) Has(_ context.Context, leadKey string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[leadKey]
	return ok, nil
}

func (s *MemoryHistoryStore) InsertIfAbsent(_ context.Context, rec Record) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.LeadKey]; ok {
		return false, nil
	}
	s.records[rec.LeadKey] = rec
	return true, nil
}

func (s *MemoryHistoryStore) Get(_ context.Context, leadKey string) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[leadKey]
	return rec, ok, nil
}
