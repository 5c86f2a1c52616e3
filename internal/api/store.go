package api

import (
	"sync"

	"github.com/google/uuid"

	"github.com/qirtas-app/qirtas/internal/document"
)

// DefaultStoreCapacity bounds how many processed documents are kept in
// memory at once. The oldest document is dropped when the cap is hit.
const DefaultStoreCapacity = 16

// DocumentStore holds processed documents in memory, keyed by ID.
type DocumentStore struct {
	mu       sync.RWMutex
	docs     map[uuid.UUID]*document.Result
	order    []uuid.UUID
	capacity int
}

// NewDocumentStore creates a store bounded to capacity documents.
func NewDocumentStore(capacity int) *DocumentStore {
	if capacity <= 0 {
		capacity = DefaultStoreCapacity
	}
	return &DocumentStore{
		docs:     make(map[uuid.UUID]*document.Result),
		capacity: capacity,
	}
}

// Put stores a processed document, evicting the oldest when full.
func (s *DocumentStore) Put(result *document.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[result.ID]; !exists {
		s.order = append(s.order, result.ID)
	}
	s.docs[result.ID] = result

	for len(s.order) > s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.docs, oldest)
	}
}

// Get returns a stored document by ID.
func (s *DocumentStore) Get(id uuid.UUID) (*document.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	return doc, ok
}

// Delete removes a document from the store.
func (s *DocumentStore) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return
	}
	delete(s.docs, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of stored documents.
func (s *DocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
