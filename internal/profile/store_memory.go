package profile

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"account-gateway/pkg/platform/sentinel"
)

// MemoryStore keeps profile records in process. Used by unit tests and local
// development when no DATABASE_URL is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record // keyed by record ID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (s *MemoryStore) Add(_ context.Context, rec *Record) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *rec
	stored.ID = uuid.NewString()
	stored.JoinedAt = time.Now().UTC()
	s.records[stored.ID] = &stored
	clone := stored
	return &clone, nil
}

func (s *MemoryStore) FindByIdentity(_ context.Context, identityID string) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Record
	for _, rec := range s.records {
		if rec.IdentityID == identityID {
			clone := *rec
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[recordID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.records, recordID)
	return nil
}
