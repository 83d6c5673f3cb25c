package persist

import (
	"context"
	"sync"

	"pagesmith/internal/editor"
)

// MemoryStore keeps encoded documents in a map. Hosts use it when no cache
// path is configured.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: map[string][]byte{}}
}

func (m *MemoryStore) Load(_ context.Context, username string) (*editor.Document, error) {
	m.mu.Lock()
	data, ok := m.docs[username]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	return editor.ParseDocument(data)
}

func (m *MemoryStore) Save(_ context.Context, username string, doc *editor.Document) error {
	data, err := doc.Marshal()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.docs[username] = data
	m.mu.Unlock()
	return nil
}
