package mocks

import (
	"context"
	"sync"
	"time"
)

// MockOccupancyStore is an in-memory stand-in for the redis-backed store.
type MockOccupancyStore struct {
	mu        sync.Mutex
	codes     map[int][]string
	updatedAt map[int]time.Time

	ReplaceErr  error
	SnapshotErr error
}

func NewMockOccupancyStore() *MockOccupancyStore {
	return &MockOccupancyStore{
		codes:     make(map[int][]string),
		updatedAt: make(map[int]time.Time),
	}
}

func (m *MockOccupancyStore) Replace(ctx context.Context, showtimeID int, codes []string) error {
	if m.ReplaceErr != nil {
		return m.ReplaceErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.codes[showtimeID] = append([]string(nil), codes...)
	m.updatedAt[showtimeID] = time.Now()

	return nil
}

func (m *MockOccupancyStore) Snapshot(ctx context.Context, showtimeID int) ([]string, time.Time, error) {
	if m.SnapshotErr != nil {
		return nil, time.Time{}, m.SnapshotErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.codes[showtimeID]...), m.updatedAt[showtimeID], nil
}

func (m *MockOccupancyStore) Codes(showtimeID int) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.codes[showtimeID]...)
}

func (m *MockOccupancyStore) SetUpdatedAt(showtimeID int, t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updatedAt[showtimeID] = t
}
