package session

import "sync"

// Storage is the persistence surface for a session record.  It is a plain
// key/value port: the browser analog is localStorage, and any deployment can
// supply its own backing (file, cookie jar, test map).
//
// Storage is deliberately synchronous and errorless.  The Store's write path
// relies on clear-then-set completing in a single pass with no suspension
// point in between, so a reader never observes mixed old/new fields.
type Storage interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool)

	// Set stores the value for key, replacing any prior value.
	Set(key string, value string)

	// Delete removes the value for key.  Deleting an absent key is a no-op.
	Delete(key string)
}

// MemoryStorage is an in-process Storage backed by a map.  It is the default
// surface when none is supplied and is safe for concurrent use.
type MemoryStorage struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{m: map[string]string{}}
}

func (s *MemoryStorage) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok
}

func (s *MemoryStorage) Set(key string, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
}

func (s *MemoryStorage) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}
