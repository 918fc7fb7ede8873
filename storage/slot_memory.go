package storage

import (
	"sync"
	"time"

	"github.com/cosmocode/sheetauth/storage/model"
)

// MemorySlotStore keeps the snapshot and flag slots in process memory. This
// is the default backend; the cache starts Empty on every restart.
type MemorySlotStore struct {
	mu       sync.RWMutex
	snapshot *model.DirectorySnapshot
	flag     *flagEntry
}

type flagEntry struct {
	value bool
	at    time.Time
}

// NewMemorySlotStore creates an empty in-memory slot store.
func NewMemorySlotStore() *MemorySlotStore {
	return &MemorySlotStore{}
}

// Store replaces the snapshot slot.
func (s *MemorySlotStore) Store(snap *model.DirectorySnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
	return nil
}

// Retrieve returns the stored snapshot or (nil, nil) when empty.
func (s *MemorySlotStore) Retrieve() (*model.DirectorySnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, nil
}

// Remove empties the snapshot slot.
func (s *MemorySlotStore) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = nil
	return nil
}

// StoreFlag replaces the schema flag slot.
func (s *MemorySlotStore) StoreFlag(value bool, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flag = &flagEntry{value: value, at: at}
	return nil
}

// RetrieveFlag returns the stored schema flag.
func (s *MemorySlotStore) RetrieveFlag() (bool, time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.flag == nil {
		return false, time.Time{}, false, nil
	}
	return s.flag.value, s.flag.at, true, nil
}

// RemoveFlag empties the schema flag slot.
func (s *MemorySlotStore) RemoveFlag() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flag = nil
	return nil
}

// Close is a no-op for the in-memory backend.
func (s *MemorySlotStore) Close() error {
	return nil
}
