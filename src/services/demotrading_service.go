package services

import (
	"context"
	"time"

	"github.com/username/nepsefolio/backend/src/cache"
	"github.com/username/nepsefolio/backend/src/logger"
	"github.com/username/nepsefolio/backend/src/models"
	"github.com/username/nepsefolio/backend/src/repository"
	"github.com/username/nepsefolio/backend/src/security/validation"
	"github.com/username/nepsefolio/backend/src/valuation"
)

type demoTradingServiceImpl struct {
	repo   repository.Repository
	store  cache.Store
	quotes QuoteProvider
	ttl    time.Duration
}

func NewDemoTradingService(repo repository.Repository, store cache.Store, provider QuoteProvider, ttl time.Duration) DemoTradingService {
	return &demoTradingServiceImpl{repo: repo, store: store, quotes: provider, ttl: ttl}
}

// GetDemoTrading returns the account, its journal and a valuation of the
// journal. The account balance is reported as stored; trades never move it.
func (s *demoTradingServiceImpl) GetDemoTrading(ctx context.Context, userID int64) (*models.DemoTradingView, error) {
	key := cache.DemoKey(userID)
	if cached, ok := cache.GetJSON[models.DemoTradingView](s.store, key); ok {
		return &cached, nil
	}

	account, err := s.repo.GetOrCreateDemoAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	txs, err := s.repo.ListDemoTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}

	snap, live := currentSnapshot(ctx, s.quotes)
	holdings := valuation.DemoHoldings(txs)
	view := &models.DemoTradingView{
		Account:      *account,
		Transactions: txs,
		Summary:      valuation.Valuate(holdings, snap),
		Positions:    valuation.Positions(holdings, snap),
		QuotesStale:  !live,
	}
	if live {
		storeJSON(ctx, s.store, key, view, s.ttl)
	}
	return view, nil
}

func (s *demoTradingServiceImpl) RecordTransaction(ctx context.Context, userID int64, in DemoTransactionInput) (*models.DemoTradingTransaction, error) {
	sym, err := validation.ValidateStockSymbol(in.StockSymbol)
	if err != nil {
		return nil, err
	}
	side, err := validation.ValidateDemoSide(in.Side)
	if err != nil {
		return nil, err
	}
	qty, err := validation.ValidateQuantity(in.Quantity, "quantity")
	if err != nil {
		return nil, err
	}
	if err := validation.ValidatePositiveFloat(in.Price, "price"); err != nil {
		return nil, err
	}

	account, err := s.repo.GetOrCreateDemoAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	tx, err := s.repo.RecordDemoTransaction(ctx, userID, account.ID, models.NewDemoTransaction{
		StockSymbol: sym,
		Side:        side,
		Quantity:    qty,
		Price:       in.Price,
	})
	if err != nil {
		return nil, err
	}
	s.store.Invalidate(cache.DemoKey(userID))
	logger.FromContext(ctx).Info("Demo trade recorded", "symbol", sym, "side", side, "quantity", qty)
	return tx, nil
}

func (s *demoTradingServiceImpl) DeleteTransaction(ctx context.Context, userID, txID int64) error {
	if err := s.repo.DeleteDemoTransaction(ctx, userID, txID); err != nil {
		return err
	}
	s.store.Invalidate(cache.DemoKey(userID))
	return nil
}

func (s *demoTradingServiceImpl) ResetAccount(ctx context.Context, userID int64) (*models.DemoTradingAccount, error) {
	account, err := s.repo.ResetDemoAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.store.Invalidate(cache.DemoKey(userID))
	logger.FromContext(ctx).Info("Demo account reset")
	return account, nil
}
