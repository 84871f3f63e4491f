package services

import (
	"context"
	"time"

	"github.com/username/nepsefolio/backend/src/cache"
	"github.com/username/nepsefolio/backend/src/models"
	"github.com/username/nepsefolio/backend/src/quotes"
	"github.com/username/nepsefolio/backend/src/repository"
	"github.com/username/nepsefolio/backend/src/security/validation"
)

type watchlistServiceImpl struct {
	repo   repository.Repository
	store  cache.Store
	quotes QuoteProvider
	ttl    time.Duration
}

func NewWatchlistService(repo repository.Repository, store cache.Store, provider QuoteProvider, ttl time.Duration) WatchlistService {
	return &watchlistServiceImpl{repo: repo, store: store, quotes: provider, ttl: ttl}
}

func (s *watchlistServiceImpl) ListWatchlist(ctx context.Context, userID int64) ([]models.WatchlistItem, error) {
	key := cache.WatchlistKey(userID)
	if cached, ok := cache.GetJSON[[]models.WatchlistItem](s.store, key); ok {
		return cached, nil
	}

	entries, err := s.repo.ListWatchlist(ctx, userID)
	if err != nil {
		return nil, err
	}

	snap, live := currentSnapshot(ctx, s.quotes)
	items := make([]models.WatchlistItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, annotate(e, snap))
	}
	if live {
		storeJSON(ctx, s.store, key, items, s.ttl)
	}
	return items, nil
}

// annotate attaches the latest quote and flags entries whose live price has
// reached the target.
func annotate(e models.WatchlistEntry, snap quotes.Snapshot) models.WatchlistItem {
	item := models.WatchlistItem{WatchlistEntry: e}
	q, ok := snap.Lookup(e.StockSymbol)
	if !ok {
		return item
	}
	item.CompanyName = q.CompanyName
	item.ChangePercent = q.ChangePercent
	if price, ok := q.LivePrice(); ok {
		item.LivePrice = &price
		item.QuoteAvailable = true
		item.TargetReached = e.TargetPrice != nil && price >= *e.TargetPrice
	}
	return item
}

func validateWatchlist(in WatchlistInput) (models.WatchlistInput, error) {
	var out models.WatchlistInput
	sym, err := validation.ValidateStockSymbol(in.StockSymbol)
	if err != nil {
		return out, err
	}
	if in.TargetPrice != nil {
		if err := validation.ValidatePositiveFloat(*in.TargetPrice, "target_price"); err != nil {
			return out, err
		}
	}
	notes, err := validation.CleanOptionalText(in.Notes, validation.MaxNotesLength, "notes")
	if err != nil {
		return out, err
	}
	return models.WatchlistInput{StockSymbol: sym, TargetPrice: in.TargetPrice, Notes: notes}, nil
}

func (s *watchlistServiceImpl) AddToWatchlist(ctx context.Context, userID int64, in WatchlistInput) (*models.WatchlistEntry, error) {
	wi, err := validateWatchlist(in)
	if err != nil {
		return nil, err
	}
	e, err := s.repo.AddWatchlist(ctx, userID, wi)
	if err != nil {
		return nil, err
	}
	s.store.Invalidate(cache.WatchlistKey(userID))
	return e, nil
}

func (s *watchlistServiceImpl) UpdateWatchlist(ctx context.Context, userID int64, symbol string, in WatchlistInput) (*models.WatchlistEntry, error) {
	in.StockSymbol = symbol
	wi, err := validateWatchlist(in)
	if err != nil {
		return nil, err
	}
	e, err := s.repo.UpdateWatchlist(ctx, userID, wi.StockSymbol, wi)
	if err != nil {
		return nil, err
	}
	s.store.Invalidate(cache.WatchlistKey(userID))
	return e, nil
}

func (s *watchlistServiceImpl) RemoveFromWatchlist(ctx context.Context, userID int64, symbol string) error {
	sym, err := validation.ValidateStockSymbol(symbol)
	if err != nil {
		return err
	}
	if err := s.repo.RemoveWatchlist(ctx, userID, sym); err != nil {
		return err
	}
	s.store.Invalidate(cache.WatchlistKey(userID))
	return nil
}
