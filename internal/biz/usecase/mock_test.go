package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/squarelan/verify-relay/internal/biz/domain"
)

// Mock implementations

type mockKV struct {
	mu      sync.Mutex
	entries map[string]domain.Entry
	now     time.Time
	failGet bool
}

func newMockKV() *mockKV {
	return &mockKV{
		entries: make(map[string]domain.Entry),
		now:     time.Unix(1_700_000_000, 0),
	}
}

func (m *mockKV) advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

func (m *mockKV) Get(ctx context.Context, key string) (domain.Value, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return domain.Value{}, false, errors.New("store down")
	}
	e, ok := m.entries[key]
	if !ok {
		return domain.Value{}, false, nil
	}
	if e.Expired(m.now) {
		delete(m.entries, key)
		return domain.Value{}, false, nil
	}
	return e.Value, true, nil
}

func (m *mockKV) Put(ctx context.Context, key string, value domain.Value, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = domain.Entry{Key: key, Value: value, ExpiresAt: domain.ExpiryFor(m.now, ttl)}
	return nil
}

func (m *mockKV) PutIfAbsent(ctx context.Context, key string, value domain.Value, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[key]; ok && !e.Expired(m.now) {
		return false, nil
	}
	m.entries[key] = domain.Entry{Key: key, Value: value, ExpiresAt: domain.ExpiryFor(m.now, ttl)}
	return true, nil
}

func (m *mockKV) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *mockKV) PurgeExpired(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, e := range m.entries {
		if e.Expired(m.now) {
			delete(m.entries, k)
			n++
		}
	}
	return n, nil
}

func (m *mockKV) Close() error {
	return nil
}

func (m *mockKV) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

type mockLookup struct {
	fraudList  string
	fraudErr   error
	notice     string
	noticeErr  error
	fraudCalls int
	noticeHits int
}

func (m *mockLookup) FetchFraudList(ctx context.Context) (string, error) {
	m.fraudCalls++
	return m.fraudList, m.fraudErr
}

func (m *mockLookup) FetchNotificationText(ctx context.Context) (string, error) {
	m.noticeHits++
	return m.notice, m.noticeErr
}
