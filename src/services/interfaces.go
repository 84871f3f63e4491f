package services

import (
	"context"
	"errors"

	"github.com/username/nepsefolio/backend/src/models"
	"github.com/username/nepsefolio/backend/src/quotes"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// QuoteProvider supplies the current market snapshot. *quotes.Service implements it.
type QuoteProvider interface {
	Snapshot(ctx context.Context) (quotes.Snapshot, error)
}

type CreatePortfolioInput struct {
	Name           string  `json:"name"`
	Description    *string `json:"description"`
	InitialBalance float64 `json:"initial_balance"`
}

type AddHoldingInput struct {
	PortfolioID     int64   `json:"portfolio_id"`
	StockSymbol     string  `json:"stock_symbol"`
	Quantity        float64 `json:"quantity"`
	AveragePrice    float64 `json:"average_price"`
	TransactionType string  `json:"transaction_type"`
	BonusShares     int64   `json:"bonus_shares"`
	RightShares     int64   `json:"right_shares"`
	CashDividend    float64 `json:"cash_dividend"`
}

type AddDividendInput struct {
	PortfolioID int64   `json:"portfolio_id"`
	StockSymbol string  `json:"stock_symbol"`
	Type        string  `json:"type"`
	Value       float64 `json:"value"`
	Date        string  `json:"date"`
	Notes       *string `json:"notes"`
}

type WatchlistInput struct {
	StockSymbol string   `json:"stock_symbol"`
	TargetPrice *float64 `json:"target_price"`
	Notes       *string  `json:"notes"`
}

type DemoTransactionInput struct {
	StockSymbol string  `json:"stock_symbol"`
	Side        string  `json:"side"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
}

// PortfolioService serves portfolios and their holdings through the per-user cache.
// Writes invalidate every cached read they can affect before returning.
type PortfolioService interface {
	ListPortfolios(ctx context.Context, userID int64) ([]models.PortfolioWithMetrics, error)
	CreatePortfolio(ctx context.Context, userID int64, in CreatePortfolioInput) (*models.Portfolio, error)
	GetPortfolio(ctx context.Context, userID, portfolioID int64) (*models.PortfolioDetail, error)
	UpdatePortfolio(ctx context.Context, userID, portfolioID int64, upd models.PortfolioUpdate) (*models.Portfolio, error)
	DeletePortfolio(ctx context.Context, userID, portfolioID int64) error

	GetHoldings(ctx context.Context, userID, portfolioID int64) (*models.HoldingsView, error)
	AddHolding(ctx context.Context, userID int64, in AddHoldingInput) (*models.Holding, error)
	DeleteHolding(ctx context.Context, userID, holdingID int64) error
}

type DividendService interface {
	ListDividends(ctx context.Context, userID, portfolioID int64) (*models.DividendsView, error)
	AddDividend(ctx context.Context, userID int64, in AddDividendInput) (*models.Dividend, error)
	DeleteDividend(ctx context.Context, userID, dividendID int64) error
}

type WatchlistService interface {
	ListWatchlist(ctx context.Context, userID int64) ([]models.WatchlistItem, error)
	AddToWatchlist(ctx context.Context, userID int64, in WatchlistInput) (*models.WatchlistEntry, error)
	UpdateWatchlist(ctx context.Context, userID int64, symbol string, in WatchlistInput) (*models.WatchlistEntry, error)
	RemoveFromWatchlist(ctx context.Context, userID int64, symbol string) error
}

type DemoTradingService interface {
	GetDemoTrading(ctx context.Context, userID int64) (*models.DemoTradingView, error)
	RecordTransaction(ctx context.Context, userID int64, in DemoTransactionInput) (*models.DemoTradingTransaction, error)
	DeleteTransaction(ctx context.Context, userID, txID int64) error
	ResetAccount(ctx context.Context, userID int64) (*models.DemoTradingAccount, error)
}

type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	// Login returns a signed access token for the user.
	Login(ctx context.Context, email, password string) (string, *models.User, error)
}
