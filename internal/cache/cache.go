// Package cache stores fetched source documents so repeated analyses of
// the same company do not refetch unchanged pages.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/mlevkov/signalsift/internal/model"
)

// Cache is the byte-level store behind the source cache
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from a source URL
func Key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "signalsift:v1:" + hex.EncodeToString(hash[:])
}

// SourceStore wraps a Cache with typed access to fetched sources
type SourceStore struct {
	cache Cache
	ttl   time.Duration
}

// NewSourceStore creates a typed source store over the given cache
func NewSourceStore(c Cache, ttl time.Duration) *SourceStore {
	return &SourceStore{cache: c, ttl: ttl}
}

// Get returns the cached source for a URL, if present and decodable
func (s *SourceStore) Get(url string) (*model.Source, bool) {
	data, found := s.cache.Get(Key(url))
	if !found {
		return nil, false
	}
	var src model.Source
	if err := json.Unmarshal(data, &src); err != nil {
		// Stale or corrupt entry; treat as a miss
		_ = s.cache.Delete(Key(url))
		return nil, false
	}
	return &src, true
}

// Put stores a fetched source
func (s *SourceStore) Put(src model.Source) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return s.cache.Set(Key(src.URL), data, s.ttl)
}
