package cache

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/username/nepsefolio/backend/src/metrics"
)

const (
	QuoteSnapshotKey = "quote-snapshot"

	keyPortfolios = "portfolios:%d"
	keyHoldings   = "holdings:%d:%d"
	keyWatchlist  = "watchlist:%d"
	keyDemo       = "demotrading:%d"
)

func PortfoliosKey(userID int64) string { return fmt.Sprintf(keyPortfolios, userID) }

func HoldingsKey(userID, portfolioID int64) string {
	return fmt.Sprintf(keyHoldings, userID, portfolioID)
}

func WatchlistKey(userID int64) string { return fmt.Sprintf(keyWatchlist, userID) }

func DemoKey(userID int64) string { return fmt.Sprintf(keyDemo, userID) }

// Store memoizes encoded values under string keys for a bounded duration.
type Store interface {
	// Get returns the value if present and not yet expired.
	Get(key string) ([]byte, bool)
	// Set stores value until now+ttl. A non-positive ttl removes the key.
	Set(key string, value []byte, ttl time.Duration)
	Invalidate(keys ...string)
}

// MemoryStore is a process-local Store backed by go-cache. Entries have no
// size bound; expired ones are dropped on lookup and by the janitor.
type MemoryStore struct {
	items   *gocache.Cache
	metrics *metrics.Metrics
}

func NewMemoryStore(cleanupInterval time.Duration, m *metrics.Metrics) *MemoryStore {
	return &MemoryStore{
		items:   gocache.New(gocache.NoExpiration, cleanupInterval),
		metrics: m,
	}
}

func (s *MemoryStore) Get(key string) ([]byte, bool) {
	v, found := s.items.Get(key)
	if !found {
		// go-cache reports expired entries as missing but keeps them until the janitor runs.
		// DeleteExpired only drops entries past their deadline, so a concurrent Set survives.
		s.items.DeleteExpired()
		s.metrics.CacheLookup(keySpace(key), false)
		return nil, false
	}
	s.metrics.CacheLookup(keySpace(key), true)
	return v.([]byte), true
}

func (s *MemoryStore) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		s.items.Delete(key)
		return
	}
	s.items.Set(key, value, ttl)
}

func (s *MemoryStore) Invalidate(keys ...string) {
	for _, key := range keys {
		s.items.Delete(key)
	}
}

// Len reports the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	return s.items.ItemCount()
}

func keySpace(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}

// GetJSON decodes a cached JSON value into T. Undecodable entries count as misses.
func GetJSON[T any](s Store, key string) (T, bool) {
	var v T
	raw, ok := s.Get(key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		s.Invalidate(key)
		return v, false
	}
	return v, true
}

// SetJSON encodes v and stores it under key.
func SetJSON(s Store, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	s.Set(key, raw, ttl)
	return nil
}
