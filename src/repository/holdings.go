package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/username/nepsefolio/backend/src/models"
)

func (r *sqliteRepository) ListHoldings(ctx context.Context, userID, portfolioID int64) ([]models.Holding, error) {
	if _, err := getLivePortfolio(ctx, r.db, userID, portfolioID); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, portfolio_id, stock_symbol, quantity, average_price, transaction_type,
		       bonus_shares, right_shares, cash_dividend, created_at
		FROM portfolio_holdings
		WHERE portfolio_id = ?
		ORDER BY created_at ASC, id ASC`, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("list holdings of portfolio %d: %w", portfolioID, err)
	}
	defer rows.Close()

	holdings := []models.Holding{}
	for rows.Next() {
		var h models.Holding
		if err := rows.Scan(&h.ID, &h.PortfolioID, &h.StockSymbol, &h.Quantity, &h.AveragePrice, &h.TransactionType,
			&h.BonusShares, &h.RightShares, &h.CashDividend, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan holding: %w", err)
		}
		holdings = append(holdings, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate holdings: %w", err)
	}
	return holdings, nil
}

// AddHolding records a Buy or Sell row. A Sell larger than the net shares
// held for the symbol in the portfolio fails with ErrInsufficientShares.
func (r *sqliteRepository) AddHolding(ctx context.Context, userID int64, in models.NewHolding) (*models.Holding, error) {
	var created *models.Holding
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getLivePortfolio(ctx, tx, userID, in.PortfolioID); err != nil {
			return err
		}

		if strings.EqualFold(in.TransactionType, models.TransactionSell) {
			held, err := netShares(ctx, tx, in.PortfolioID, in.StockSymbol, 0)
			if err != nil {
				return err
			}
			if in.Quantity > held {
				return fmt.Errorf("%w: holding %d %s, selling %d", ErrInsufficientShares, held, in.StockSymbol, in.Quantity)
			}
		}

		now := r.now()
		res, err := tx.ExecContext(ctx, `
			INSERT INTO portfolio_holdings
				(portfolio_id, stock_symbol, quantity, average_price, transaction_type, bonus_shares, right_shares, cash_dividend, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			in.PortfolioID, in.StockSymbol, in.Quantity, in.AveragePrice, in.TransactionType,
			in.BonusShares, in.RightShares, in.CashDividend, now)
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		if err != nil {
			return fmt.Errorf("insert holding: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("read holding id: %w", err)
		}
		created = &models.Holding{
			ID:              id,
			PortfolioID:     in.PortfolioID,
			StockSymbol:     in.StockSymbol,
			Quantity:        in.Quantity,
			AveragePrice:    in.AveragePrice,
			TransactionType: in.TransactionType,
			BonusShares:     in.BonusShares,
			RightShares:     in.RightShares,
			CashDividend:    in.CashDividend,
			CreatedAt:       now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// DeleteHolding removes one row and returns its portfolio. Deleting a Buy
// that later sells depend on fails with ErrInsufficientShares.
func (r *sqliteRepository) DeleteHolding(ctx context.Context, userID, holdingID int64) (int64, error) {
	var portfolioID int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var symbol, kind string
		err := tx.QueryRowContext(ctx, `
			SELECT h.portfolio_id, h.stock_symbol, h.transaction_type
			FROM portfolio_holdings h
			JOIN portfolios p ON p.id = h.portfolio_id
			WHERE h.id = ? AND p.user_id = ? AND p.deleted_at IS NULL`, holdingID, userID).Scan(&portfolioID, &symbol, &kind)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("find holding %d: %w", holdingID, err)
		}

		// Removing a buy must not leave later sells uncovered.
		if strings.EqualFold(kind, models.TransactionBuy) {
			remaining, err := netShares(ctx, tx, portfolioID, symbol, holdingID)
			if err != nil {
				return err
			}
			if remaining < 0 {
				return fmt.Errorf("%w: removing buy %d would leave %d %s", ErrInsufficientShares, holdingID, remaining, symbol)
			}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM portfolio_holdings WHERE id = ?`, holdingID); err != nil {
			return fmt.Errorf("delete holding %d: %w", holdingID, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return portfolioID, nil
}

// netShares is bought minus sold for symbol in the portfolio, ignoring the
// row excludeID (0 excludes nothing).
func netShares(ctx context.Context, q queryer, portfolioID int64, symbol string, excludeID int64) (int64, error) {
	var held int64
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN transaction_type = 'Buy' THEN quantity ELSE -quantity END), 0)
		FROM portfolio_holdings
		WHERE portfolio_id = ? AND stock_symbol = ? AND id <> ?`, portfolioID, symbol, excludeID).Scan(&held)
	if err != nil {
		return 0, fmt.Errorf("compute net shares: %w", err)
	}
	return held, nil
}
