package quotes

import (
	"context"
	"fmt"
	"time"

	"github.com/username/nepsefolio/backend/src/cache"
	"github.com/username/nepsefolio/backend/src/logger"
	"github.com/username/nepsefolio/backend/src/metrics"
)

// Service reads the market snapshot through the cache.
type Service struct {
	source  Source
	store   cache.Store
	ttl     time.Duration
	metrics *metrics.Metrics
}

func NewService(source Source, store cache.Store, ttl time.Duration, m *metrics.Metrics) *Service {
	return &Service{source: source, store: store, ttl: ttl, metrics: m}
}

// RawSnapshot returns the upstream payload, refetching only when the cached
// copy has expired. Failed fetches are not cached.
func (s *Service) RawSnapshot(ctx context.Context) ([]byte, error) {
	if raw, ok := s.store.Get(cache.QuoteSnapshotKey); ok {
		return raw, nil
	}

	raw, err := s.source.FetchSnapshot(ctx)
	s.metrics.QuoteFetch(err == nil)
	if err != nil {
		logger.FromContext(ctx).Warn("Quote snapshot fetch failed", "error", err)
		return nil, err
	}

	s.store.Set(cache.QuoteSnapshotKey, raw, s.ttl)
	logger.FromContext(ctx).Debug("Quote snapshot refreshed", "bytes", len(raw))
	return raw, nil
}

func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	raw, err := s.RawSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	records, err := Decode(raw)
	if err != nil {
		s.store.Invalidate(cache.QuoteSnapshotKey)
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return NewSnapshot(records), nil
}
