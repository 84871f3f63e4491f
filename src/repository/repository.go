// Package repository persists portfolios, holdings, dividends, watchlists,
// demo trading journals and users in SQLite. Every call that touches
// user-owned rows takes the caller's user id and filters by it; rows owned
// by someone else are reported as ErrNotFound.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/username/nepsefolio/backend/src/logger"
	"github.com/username/nepsefolio/backend/src/models"
)

// MaxPortfoliosPerUser bounds the number of live (not soft-deleted) portfolios.
const MaxPortfoliosPerUser = 5

var (
	ErrNotFound           = errors.New("resource not found")
	ErrDuplicate          = errors.New("resource already exists")
	ErrDuplicateName      = errors.New("a portfolio with this name already exists")
	ErrLimitExceeded      = fmt.Errorf("portfolio limit of %d reached", MaxPortfoliosPerUser)
	ErrInsufficientShares = errors.New("sell quantity exceeds shares held")
)

type Repository interface {
	CreatePortfolio(ctx context.Context, userID int64, name string, initialBalance float64, description *string) (*models.Portfolio, error)
	ListPortfolios(ctx context.Context, userID int64) ([]models.PortfolioWithMetrics, error)
	GetPortfolio(ctx context.Context, userID, portfolioID int64) (*models.Portfolio, error)
	UpdatePortfolio(ctx context.Context, userID, portfolioID int64, upd models.PortfolioUpdate) (*models.Portfolio, error)
	DeletePortfolio(ctx context.Context, userID, portfolioID int64) error

	ListHoldings(ctx context.Context, userID, portfolioID int64) ([]models.Holding, error)
	AddHolding(ctx context.Context, userID int64, h models.NewHolding) (*models.Holding, error)
	// DeleteHolding returns the id of the portfolio the removed row belonged to.
	DeleteHolding(ctx context.Context, userID, holdingID int64) (int64, error)

	ListDividends(ctx context.Context, userID, portfolioID int64) ([]models.Dividend, error)
	AddDividend(ctx context.Context, userID int64, d models.NewDividend) (*models.Dividend, error)
	DeleteDividend(ctx context.Context, userID, dividendID int64) (int64, error)

	ListWatchlist(ctx context.Context, userID int64) ([]models.WatchlistEntry, error)
	AddWatchlist(ctx context.Context, userID int64, in models.WatchlistInput) (*models.WatchlistEntry, error)
	UpdateWatchlist(ctx context.Context, userID int64, symbol string, in models.WatchlistInput) (*models.WatchlistEntry, error)
	RemoveWatchlist(ctx context.Context, userID int64, symbol string) error

	GetOrCreateDemoAccount(ctx context.Context, userID int64) (*models.DemoTradingAccount, error)
	ListDemoTransactions(ctx context.Context, userID int64) ([]models.DemoTradingTransaction, error)
	RecordDemoTransaction(ctx context.Context, userID, accountID int64, tx models.NewDemoTransaction) (*models.DemoTradingTransaction, error)
	DeleteDemoTransaction(ctx context.Context, userID, txID int64) error
	ResetDemoAccount(ctx context.Context, userID int64) (*models.DemoTradingAccount, error)

	CreateUser(ctx context.Context, username, email, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type sqliteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) Repository {
	return &sqliteRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *sqliteRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.FromContext(ctx).Error("Failed to roll back transaction", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
