package services

import (
	"context"
	"fmt"
	"time"

	"github.com/username/nepsefolio/backend/src/cache"
	"github.com/username/nepsefolio/backend/src/logger"
	"github.com/username/nepsefolio/backend/src/quotes"
	"github.com/username/nepsefolio/backend/src/security/validation"
)

// currentSnapshot never fails: without quotes every line is valued at cost.
// The bool reports whether live quotes were available.
func currentSnapshot(ctx context.Context, provider QuoteProvider) (quotes.Snapshot, bool) {
	if provider == nil {
		return nil, false
	}
	snap, err := provider.Snapshot(ctx)
	if err != nil {
		logger.FromContext(ctx).Warn("Quotes unavailable, valuing holdings at cost", "error", err)
		return nil, false
	}
	return snap, true
}

func storeJSON(ctx context.Context, store cache.Store, key string, v any, ttl time.Duration) {
	if err := cache.SetJSON(store, key, v, ttl); err != nil {
		logger.FromContext(ctx).Error("Failed to cache response", "key", key, "error", err)
	}
}

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", validation.ErrValidationFailed, msg)
}
