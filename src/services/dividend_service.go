package services

import (
	"context"

	"github.com/username/nepsefolio/backend/src/logger"
	"github.com/username/nepsefolio/backend/src/models"
	"github.com/username/nepsefolio/backend/src/repository"
	"github.com/username/nepsefolio/backend/src/security/validation"
	"github.com/username/nepsefolio/backend/src/valuation"
)

type dividendServiceImpl struct {
	repo repository.Repository
}

func NewDividendService(repo repository.Repository) DividendService {
	return &dividendServiceImpl{repo: repo}
}

func (s *dividendServiceImpl) ListDividends(ctx context.Context, userID, portfolioID int64) (*models.DividendsView, error) {
	divs, err := s.repo.ListDividends(ctx, userID, portfolioID)
	if err != nil {
		return nil, err
	}
	return &models.DividendsView{
		PortfolioID: portfolioID,
		Dividends:   divs,
		Summary:     valuation.SummarizeDividends(divs),
	}, nil
}

func (s *dividendServiceImpl) AddDividend(ctx context.Context, userID int64, in AddDividendInput) (*models.Dividend, error) {
	if in.PortfolioID <= 0 {
		return nil, validationError("portfolio_id is required")
	}
	sym, err := validation.ValidateStockSymbol(in.StockSymbol)
	if err != nil {
		return nil, err
	}
	kind, err := validation.ValidateDividendType(in.Type)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidatePositiveFloat(in.Value, "value"); err != nil {
		return nil, err
	}
	if _, err := validation.ValidateDateString(in.Date, "date"); err != nil {
		return nil, err
	}
	notes, err := validation.CleanOptionalText(in.Notes, validation.MaxNotesLength, "notes")
	if err != nil {
		return nil, err
	}

	d, err := s.repo.AddDividend(ctx, userID, models.NewDividend{
		PortfolioID: in.PortfolioID,
		StockSymbol: sym,
		Type:        kind,
		Value:       in.Value,
		Date:        in.Date,
		Notes:       notes,
	})
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("Dividend recorded", "portfolioID", d.PortfolioID, "symbol", d.StockSymbol, "type", d.Type)
	return d, nil
}

func (s *dividendServiceImpl) DeleteDividend(ctx context.Context, userID, dividendID int64) error {
	_, err := s.repo.DeleteDividend(ctx, userID, dividendID)
	return err
}
