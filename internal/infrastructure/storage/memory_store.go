package storage

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"clearing_proposals/internal/usecase/interfaces"
)

// MemoryStore keeps objects in process. Used when no bucket is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]Object
	now     func() time.Time
}

type Object struct {
	Data        []byte
	ContentType string
}

var _ interfaces.IAssetStore = (*MemoryStore)(nil)

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: map[string]Object{},
		now:     time.Now,
	}
}

func (m *MemoryStore) Upload(_ context.Context, key string, data []byte, contentType string) (string, error) {
	cp := make([]byte, len(data))
	copy(cp, data)
	m.mu.Lock()
	m.objects[key] = Object{Data: cp, ContentType: contentType}
	m.mu.Unlock()
	return key, nil
}

func (m *MemoryStore) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	q := url.Values{}
	q.Set("expires", m.now().Add(ttl).UTC().Format(time.RFC3339))
	return m.baseURL + "/assets/" + key + "?" + q.Encode(), nil
}

func (m *MemoryStore) Get(key string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[key]
	return o, ok
}
