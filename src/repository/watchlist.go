package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/username/nepsefolio/backend/src/models"
)

const watchlistColumns = `id, user_id, stock_symbol, target_price, notes, created_at`

func scanWatchlist(row interface{ Scan(...any) error }) (*models.WatchlistEntry, error) {
	var (
		e      models.WatchlistEntry
		target sql.NullFloat64
		notes  sql.NullString
	)
	if err := row.Scan(&e.ID, &e.UserID, &e.StockSymbol, &target, &notes, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.TargetPrice = floatPtr(target)
	e.Notes = stringPtr(notes)
	return &e, nil
}

func (r *sqliteRepository) ListWatchlist(ctx context.Context, userID int64) ([]models.WatchlistEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+watchlistColumns+` FROM watchlist WHERE user_id = ? ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	defer rows.Close()

	entries := []models.WatchlistEntry{}
	for rows.Next() {
		e, err := scanWatchlist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan watchlist entry: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watchlist: %w", err)
	}
	return entries, nil
}

func (r *sqliteRepository) AddWatchlist(ctx context.Context, userID int64, in models.WatchlistInput) (*models.WatchlistEntry, error) {
	now := r.now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO watchlist (user_id, stock_symbol, target_price, notes, created_at) VALUES (?, ?, ?, ?, ?)`,
		userID, in.StockSymbol, nullFloat(in.TargetPrice), nullString(in.Notes), now)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("insert watchlist entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read watchlist id: %w", err)
	}
	return &models.WatchlistEntry{
		ID:          id,
		UserID:      userID,
		StockSymbol: in.StockSymbol,
		TargetPrice: in.TargetPrice,
		Notes:       in.Notes,
		CreatedAt:   now,
	}, nil
}

// UpdateWatchlist replaces the target price and notes of an existing entry.
func (r *sqliteRepository) UpdateWatchlist(ctx context.Context, userID int64, symbol string, in models.WatchlistInput) (*models.WatchlistEntry, error) {
	var updated *models.WatchlistEntry
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE watchlist SET target_price = ?, notes = ? WHERE user_id = ? AND stock_symbol = ?`,
			nullFloat(in.TargetPrice), nullString(in.Notes), userID, symbol)
		if err != nil {
			return fmt.Errorf("update watchlist entry %s: %w", symbol, err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("update watchlist entry %s: %w", symbol, err)
		} else if n == 0 {
			return ErrNotFound
		}

		e, err := scanWatchlist(tx.QueryRowContext(ctx,
			`SELECT `+watchlistColumns+` FROM watchlist WHERE user_id = ? AND stock_symbol = ?`, userID, symbol))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("reload watchlist entry %s: %w", symbol, err)
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *sqliteRepository) RemoveWatchlist(ctx context.Context, userID int64, symbol string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM watchlist WHERE user_id = ? AND stock_symbol = ?`, userID, symbol)
	if err != nil {
		return fmt.Errorf("remove watchlist entry %s: %w", symbol, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove watchlist entry %s: %w", symbol, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
