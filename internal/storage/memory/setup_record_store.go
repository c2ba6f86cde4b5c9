package memory

import (
	"context"
	"sort"
	"sync"

	"divergence-lab/internal/domain"
	"divergence-lab/internal/storage"
)

// setupKey identifies one record within the store.
type setupKey struct {
	runID   string
	setupID string
}

// SetupRecordStore is an in-memory implementation of storage.SetupRecordStore.
type SetupRecordStore struct {
	mu   sync.RWMutex
	data map[setupKey]*domain.TradeSetup
}

// NewSetupRecordStore creates a new in-memory setup record store.
func NewSetupRecordStore() *SetupRecordStore {
	return &SetupRecordStore{
		data: make(map[setupKey]*domain.TradeSetup),
	}
}

// Compile-time interface check.
var _ storage.SetupRecordStore = (*SetupRecordStore)(nil)

// Insert adds one completed setup. Returns ErrDuplicateKey if
// (run_id, setup_id) exists.
func (s *SetupRecordStore) Insert(_ context.Context, runID string, t *domain.TradeSetup) error {
	if runID == "" || t == nil || t.SetupID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := setupKey{runID, t.SetupID}
	if _, exists := s.data[k]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *t
	s.data[k] = &cp
	return nil
}

// InsertBulk adds multiple setups atomically. Fails entire batch on any duplicate.
func (s *SetupRecordStore) InsertBulk(_ context.Context, runID string, setups []*domain.TradeSetup) error {
	if len(setups) == 0 {
		return nil
	}
	if runID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[setupKey]struct{}, len(setups))
	for _, t := range setups {
		if t == nil || t.SetupID == "" {
			return storage.ErrInvalidInput
		}
		k := setupKey{runID, t.SetupID}
		if _, exists := s.data[k]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[k]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[k] = struct{}{}
	}

	for _, t := range setups {
		cp := *t
		s.data[setupKey{runID, t.SetupID}] = &cp
	}
	return nil
}

// GetByRunID retrieves all setups of a run, ordered by ppi_time_ms ASC,
// setup_id ASC.
func (s *SetupRecordStore) GetByRunID(_ context.Context, runID string) ([]*domain.TradeSetup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeSetup
	for k, t := range s.data {
		if k.runID == runID {
			cp := *t
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].PPITimeMs != result[j].PPITimeMs {
			return result[i].PPITimeMs < result[j].PPITimeMs
		}
		return result[i].SetupID < result[j].SetupID
	})

	return result, nil
}

// GetByID retrieves one setup. Returns ErrNotFound if not exists.
func (s *SetupRecordStore) GetByID(_ context.Context, runID, setupID string) (*domain.TradeSetup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.data[setupKey{runID, setupID}]
	if !exists {
		return nil, storage.ErrNotFound
	}

	cp := *t
	return &cp, nil
}
