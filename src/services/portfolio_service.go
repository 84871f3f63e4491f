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

type portfolioServiceImpl struct {
	repo   repository.Repository
	store  cache.Store
	quotes QuoteProvider
	ttl    time.Duration
}

func NewPortfolioService(repo repository.Repository, store cache.Store, quotes QuoteProvider, ttl time.Duration) PortfolioService {
	return &portfolioServiceImpl{repo: repo, store: store, quotes: quotes, ttl: ttl}
}

// invalidate drops the list view and, when given, the holdings views
// of the listed portfolios.
func (s *portfolioServiceImpl) invalidate(userID int64, portfolioIDs ...int64) {
	keys := []string{cache.PortfoliosKey(userID)}
	for _, id := range portfolioIDs {
		keys = append(keys, cache.HoldingsKey(userID, id))
	}
	s.store.Invalidate(keys...)
}

func (s *portfolioServiceImpl) ListPortfolios(ctx context.Context, userID int64) ([]models.PortfolioWithMetrics, error) {
	key := cache.PortfoliosKey(userID)
	if cached, ok := cache.GetJSON[[]models.PortfolioWithMetrics](s.store, key); ok {
		return cached, nil
	}

	portfolios, err := s.repo.ListPortfolios(ctx, userID)
	if err != nil {
		return nil, err
	}
	storeJSON(ctx, s.store, key, portfolios, s.ttl)
	return portfolios, nil
}

func (s *portfolioServiceImpl) CreatePortfolio(ctx context.Context, userID int64, in CreatePortfolioInput) (*models.Portfolio, error) {
	name, err := validation.ValidatePortfolioName(in.Name)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateNonNegativeFloat(in.InitialBalance, "initial_balance"); err != nil {
		return nil, err
	}
	desc, err := validation.CleanOptionalText(in.Description, validation.MaxDescriptionLength, "description")
	if err != nil {
		return nil, err
	}

	p, err := s.repo.CreatePortfolio(ctx, userID, name, in.InitialBalance, desc)
	if err != nil {
		return nil, err
	}
	s.invalidate(userID)
	logger.FromContext(ctx).Info("Portfolio created", "portfolioID", p.ID)
	return p, nil
}

func (s *portfolioServiceImpl) GetPortfolio(ctx context.Context, userID, portfolioID int64) (*models.PortfolioDetail, error) {
	p, err := s.repo.GetPortfolio(ctx, userID, portfolioID)
	if err != nil {
		return nil, err
	}
	view, err := s.GetHoldings(ctx, userID, portfolioID)
	if err != nil {
		return nil, err
	}
	return &models.PortfolioDetail{Portfolio: *p, Summary: view.Summary}, nil
}

func (s *portfolioServiceImpl) UpdatePortfolio(ctx context.Context, userID, portfolioID int64, upd models.PortfolioUpdate) (*models.Portfolio, error) {
	if upd.Name != nil {
		name, err := validation.ValidatePortfolioName(*upd.Name)
		if err != nil {
			return nil, err
		}
		upd.Name = &name
	}
	if upd.InitialBalance != nil {
		if err := validation.ValidateNonNegativeFloat(*upd.InitialBalance, "initial_balance"); err != nil {
			return nil, err
		}
	}
	if upd.Description != nil {
		desc, err := validation.CleanOptionalText(upd.Description, validation.MaxDescriptionLength, "description")
		if err != nil {
			return nil, err
		}
		if desc == nil {
			empty := ""
			desc = &empty
		}
		upd.Description = desc
	}

	p, err := s.repo.UpdatePortfolio(ctx, userID, portfolioID, upd)
	if err != nil {
		return nil, err
	}
	s.invalidate(userID, portfolioID)
	return p, nil
}

func (s *portfolioServiceImpl) DeletePortfolio(ctx context.Context, userID, portfolioID int64) error {
	if err := s.repo.DeletePortfolio(ctx, userID, portfolioID); err != nil {
		return err
	}
	s.invalidate(userID, portfolioID)
	logger.FromContext(ctx).Info("Portfolio deleted", "portfolioID", portfolioID)
	return nil
}

// GetHoldings returns the holding rows with their valuation. Views built
// without live quotes are not cached so that recovery shows up immediately.
func (s *portfolioServiceImpl) GetHoldings(ctx context.Context, userID, portfolioID int64) (*models.HoldingsView, error) {
	key := cache.HoldingsKey(userID, portfolioID)
	if cached, ok := cache.GetJSON[models.HoldingsView](s.store, key); ok {
		return &cached, nil
	}

	holdings, err := s.repo.ListHoldings(ctx, userID, portfolioID)
	if err != nil {
		return nil, err
	}

	snap, live := currentSnapshot(ctx, s.quotes)
	view := &models.HoldingsView{
		PortfolioID: portfolioID,
		Holdings:    holdings,
		Summary:     valuation.Valuate(holdings, snap),
		Positions:   valuation.Positions(holdings, snap),
		QuotesStale: !live,
	}
	if live {
		storeJSON(ctx, s.store, key, view, s.ttl)
	}
	return view, nil
}

func (s *portfolioServiceImpl) AddHolding(ctx context.Context, userID int64, in AddHoldingInput) (*models.Holding, error) {
	nh, err := validateHolding(in)
	if err != nil {
		return nil, err
	}

	h, err := s.repo.AddHolding(ctx, userID, nh)
	if err != nil {
		return nil, err
	}
	s.invalidate(userID, in.PortfolioID)
	logger.FromContext(ctx).Info("Holding recorded", "portfolioID", h.PortfolioID, "symbol", h.StockSymbol, "type", h.TransactionType)
	return h, nil
}

func (s *portfolioServiceImpl) DeleteHolding(ctx context.Context, userID, holdingID int64) error {
	portfolioID, err := s.repo.DeleteHolding(ctx, userID, holdingID)
	if err != nil {
		return err
	}
	s.invalidate(userID, portfolioID)
	return nil
}

func validateHolding(in AddHoldingInput) (models.NewHolding, error) {
	var nh models.NewHolding
	if in.PortfolioID <= 0 {
		return nh, validationError("portfolio_id is required")
	}
	sym, err := validation.ValidateStockSymbol(in.StockSymbol)
	if err != nil {
		return nh, err
	}
	qty, err := validation.ValidateQuantity(in.Quantity, "quantity")
	if err != nil {
		return nh, err
	}
	if err := validation.ValidatePositiveFloat(in.AveragePrice, "average_price"); err != nil {
		return nh, err
	}
	kind, err := validation.ValidateTransactionType(in.TransactionType)
	if err != nil {
		return nh, err
	}
	if err := validation.ValidateShareCount(in.BonusShares, "bonus_shares"); err != nil {
		return nh, err
	}
	if err := validation.ValidateShareCount(in.RightShares, "right_shares"); err != nil {
		return nh, err
	}
	if err := validation.ValidateNonNegativeFloat(in.CashDividend, "cash_dividend"); err != nil {
		return nh, err
	}

	return models.NewHolding{
		PortfolioID:     in.PortfolioID,
		StockSymbol:     sym,
		Quantity:        qty,
		AveragePrice:    in.AveragePrice,
		TransactionType: kind,
		BonusShares:     in.BonusShares,
		RightShares:     in.RightShares,
		CashDividend:    in.CashDividend,
	}, nil
}
