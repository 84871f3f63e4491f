package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/username/nepsefolio/backend/src/models"
)

func (r *sqliteRepository) ListDividends(ctx context.Context, userID, portfolioID int64) ([]models.Dividend, error) {
	if _, err := getLivePortfolio(ctx, r.db, userID, portfolioID); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, portfolio_id, stock_symbol, type, value, date, notes, created_at
		FROM dividends
		WHERE portfolio_id = ?
		ORDER BY date DESC, id DESC`, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("list dividends of portfolio %d: %w", portfolioID, err)
	}
	defer rows.Close()

	dividends := []models.Dividend{}
	for rows.Next() {
		var (
			d     models.Dividend
			notes sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.PortfolioID, &d.StockSymbol, &d.Type, &d.Value, &d.Date, &notes, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan dividend: %w", err)
		}
		d.Notes = stringPtr(notes)
		dividends = append(dividends, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dividends: %w", err)
	}
	return dividends, nil
}

func (r *sqliteRepository) AddDividend(ctx context.Context, userID int64, in models.NewDividend) (*models.Dividend, error) {
	var created *models.Dividend
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getLivePortfolio(ctx, tx, userID, in.PortfolioID); err != nil {
			return err
		}
		now := r.now()
		res, err := tx.ExecContext(ctx, `
			INSERT INTO dividends (portfolio_id, stock_symbol, type, value, date, notes, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			in.PortfolioID, in.StockSymbol, in.Type, in.Value, in.Date, nullString(in.Notes), now)
		if err != nil {
			return fmt.Errorf("insert dividend: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("read dividend id: %w", err)
		}
		created = &models.Dividend{
			ID:          id,
			PortfolioID: in.PortfolioID,
			StockSymbol: in.StockSymbol,
			Type:        in.Type,
			Value:       in.Value,
			Date:        in.Date,
			Notes:       in.Notes,
			CreatedAt:   now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *sqliteRepository) DeleteDividend(ctx context.Context, userID, dividendID int64) (int64, error) {
	var portfolioID int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			SELECT d.portfolio_id
			FROM dividends d
			JOIN portfolios p ON p.id = d.portfolio_id
			WHERE d.id = ? AND p.user_id = ? AND p.deleted_at IS NULL`, dividendID, userID).Scan(&portfolioID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("find dividend %d: %w", dividendID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM dividends WHERE id = ?`, dividendID); err != nil {
			return fmt.Errorf("delete dividend %d: %w", dividendID, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return portfolioID, nil
}
