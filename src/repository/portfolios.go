package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/username/nepsefolio/backend/src/models"
)

const portfolioColumns = `id, user_id, name, description, initial_balance, created_at, deleted_at`

func scanPortfolio(row interface{ Scan(...any) error }) (*models.Portfolio, error) {
	var (
		p       models.Portfolio
		desc    sql.NullString
		deleted sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &desc, &p.InitialBalance, &p.CreatedAt, &deleted); err != nil {
		return nil, err
	}
	p.Description = stringPtr(desc)
	p.DeletedAt = timePtr(deleted)
	return &p, nil
}

func getLivePortfolio(ctx context.Context, q queryer, userID, portfolioID int64) (*models.Portfolio, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+portfolioColumns+` FROM portfolios WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		portfolioID, userID)
	p, err := scanPortfolio(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get portfolio %d: %w", portfolioID, err)
	}
	return p, nil
}

func nameTaken(ctx context.Context, q queryer, userID int64, name string, exceptID int64) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM portfolios WHERE user_id = ? AND name = ? AND deleted_at IS NULL AND id != ?`,
		userID, name, exceptID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check portfolio name: %w", err)
	}
	return n > 0, nil
}

func (r *sqliteRepository) CreatePortfolio(ctx context.Context, userID int64, name string, initialBalance float64, description *string) (*models.Portfolio, error) {
	var created *models.Portfolio
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var live int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM portfolios WHERE user_id = ? AND deleted_at IS NULL`, userID).Scan(&live); err != nil {
			return fmt.Errorf("count portfolios: %w", err)
		}
		if live >= MaxPortfoliosPerUser {
			return ErrLimitExceeded
		}

		taken, err := nameTaken(ctx, tx, userID, name, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateName
		}

		now := r.now()
		res, err := tx.ExecContext(ctx,
			`INSERT INTO portfolios (user_id, name, description, initial_balance, created_at) VALUES (?, ?, ?, ?, ?)`,
			userID, name, nullString(description), initialBalance, now)
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		if err != nil {
			return fmt.Errorf("insert portfolio: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("read portfolio id: %w", err)
		}
		created = &models.Portfolio{
			ID:             id,
			UserID:         userID,
			Name:           name,
			Description:    description,
			InitialBalance: initialBalance,
			CreatedAt:      now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *sqliteRepository) ListPortfolios(ctx context.Context, userID int64) ([]models.PortfolioWithMetrics, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.user_id, p.name, p.description, p.initial_balance, p.created_at, p.deleted_at,
		       COALESCE(SUM(CASE WHEN h.transaction_type = 'Buy' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN h.transaction_type = 'Buy' THEN h.quantity * h.average_price ELSE 0 END), 0.0)
		FROM portfolios p
		LEFT JOIN portfolio_holdings h ON h.portfolio_id = p.id
		WHERE p.user_id = ? AND p.deleted_at IS NULL
		GROUP BY p.id
		ORDER BY p.created_at ASC, p.id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list portfolios: %w", err)
	}
	defer rows.Close()

	portfolios := []models.PortfolioWithMetrics{}
	for rows.Next() {
		var (
			pm      models.PortfolioWithMetrics
			desc    sql.NullString
			deleted sql.NullTime
		)
		if err := rows.Scan(&pm.ID, &pm.UserID, &pm.Name, &desc, &pm.InitialBalance, &pm.CreatedAt, &deleted,
			&pm.HoldingsCount, &pm.TotalValue); err != nil {
			return nil, fmt.Errorf("scan portfolio: %w", err)
		}
		pm.Description = stringPtr(desc)
		pm.DeletedAt = timePtr(deleted)
		portfolios = append(portfolios, pm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate portfolios: %w", err)
	}
	return portfolios, nil
}

func (r *sqliteRepository) GetPortfolio(ctx context.Context, userID, portfolioID int64) (*models.Portfolio, error) {
	return getLivePortfolio(ctx, r.db, userID, portfolioID)
}

func (r *sqliteRepository) UpdatePortfolio(ctx context.Context, userID, portfolioID int64, upd models.PortfolioUpdate) (*models.Portfolio, error) {
	var updated *models.Portfolio
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		p, err := getLivePortfolio(ctx, tx, userID, portfolioID)
		if err != nil {
			return err
		}

		if upd.Name != nil && *upd.Name != p.Name {
			taken, err := nameTaken(ctx, tx, userID, *upd.Name, p.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrDuplicateName
			}
			p.Name = *upd.Name
		}
		if upd.Description != nil {
			p.Description = upd.Description
		}
		if upd.InitialBalance != nil {
			p.InitialBalance = *upd.InitialBalance
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE portfolios SET name = ?, description = ?, initial_balance = ? WHERE id = ? AND user_id = ?`,
			p.Name, nullString(p.Description), p.InitialBalance, p.ID, userID)
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		if err != nil {
			return fmt.Errorf("update portfolio %d: %w", p.ID, err)
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeletePortfolio removes the portfolio's holdings and dividends and
// soft-deletes the portfolio itself, freeing its name and its slot.
func (r *sqliteRepository) DeletePortfolio(ctx context.Context, userID, portfolioID int64) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getLivePortfolio(ctx, tx, userID, portfolioID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM portfolio_holdings WHERE portfolio_id = ?`, portfolioID); err != nil {
			return fmt.Errorf("delete holdings of portfolio %d: %w", portfolioID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM dividends WHERE portfolio_id = ?`, portfolioID); err != nil {
			return fmt.Errorf("delete dividends of portfolio %d: %w", portfolioID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE portfolios SET deleted_at = ? WHERE id = ? AND user_id = ?`, r.now(), portfolioID, userID); err != nil {
			return fmt.Errorf("soft-delete portfolio %d: %w", portfolioID, err)
		}
		return nil
	})
}
