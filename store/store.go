package store

import (
	"github.com/outofforest/noun/types"
)

// Store persists jammed nouns addressed by their mug.
type Store interface {
	// Put stores the blob under its mug. Storing the same mug again is a
	// no-op: the store is content-addressed.
	Put(m types.Mug, blob []byte) error

	// Get returns the blob stored under the mug.
	Get(m types.Mug) ([]byte, bool, error)

	// Sync flushes pending writes to the backing medium.
	Sync() error
}

// NewMemStore creates new in-memory store. Used for testing.
func NewMemStore() *MemStore {
	return &MemStore{
		blobs: map[types.Mug][]byte{},
	}
}

// MemStore keeps blobs in a map.
type MemStore struct {
	blobs map[types.Mug][]byte
}

// Put stores the blob.
func (s *MemStore) Put(m types.Mug, blob []byte) error {
	if _, exists := s.blobs[m]; exists {
		return nil
	}
	b := make([]byte, len(blob))
	copy(b, blob)
	s.blobs[m] = b
	return nil
}

// Get returns the blob.
func (s *MemStore) Get(m types.Mug) ([]byte, bool, error) {
	blob, exists := s.blobs[m]
	return blob, exists, nil
}

// Sync does nothing.
func (s *MemStore) Sync() error {
	return nil
}

// NewDummyStore creates new no-op store. Used for benchmarking the encoding
// path without touching any medium.
func NewDummyStore() *DummyStore {
	return &DummyStore{}
}

// DummyStore drops everything it is given.
type DummyStore struct{}

// Put is a no-op implementation.
func (s *DummyStore) Put(_ types.Mug, _ []byte) error {
	return nil
}

// Get never finds anything.
func (s *DummyStore) Get(_ types.Mug) ([]byte, bool, error) {
	return nil, false, nil
}

// Sync does nothing.
func (s *DummyStore) Sync() error {
	return nil
}
