package profile

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kalambet/folio/internal/storage"
)

// --- Mock document store ---

type memStore struct {
	mu   sync.Mutex
	docs map[string][]byte

	updateCalls int
	failWith    error
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string][]byte)}
}

func (m *memStore) FindOne(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	b, ok := m.docs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (m *memStore) FindOneAndUpdate(_ context.Context, key string, fn storage.UpdateFunc) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	if m.failWith != nil {
		return nil, m.failWith
	}
	b, ok := m.docs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out, err := fn(append([]byte(nil), b...))
	if err != nil {
		return nil, err
	}
	m.docs[key] = out
	return out, nil
}

func (m *memStore) ReplaceOne(_ context.Context, key string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = append([]byte(nil), body...)
	return nil
}

func (m *memStore) raw(t *testing.T, key string) Profile {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	var p Profile
	require.NoError(t, json.Unmarshal(m.docs[key], &p), "decoding stored profile")
	return p
}

// --- Mock clock ---

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

const testEmail = "owner@example.com"

// newTestService seeds a profile into a fresh memStore and returns a
// Service bound to it.
func newTestService(t *testing.T) (*Service, *memStore) {
	t.Helper()
	store := newMemStore()
	_, err := Seed(context.Background(), store, Profile{
		Name:   "Owner",
		Email:  testEmail,
		Skills: []string{"Go"},
	})
	require.NoError(t, err)
	return NewService(NewRepository(store, testEmail)), store
}

var errStoreDown = errors.New("store down")
