package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/username/nepsefolio/backend/src/models"
)

func ensureDemoAccount(ctx context.Context, q queryer, userID int64, now time.Time) (*models.DemoTradingAccount, error) {
	if _, err := q.ExecContext(ctx, `
		INSERT INTO demotrading (user_id, current_balance, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO NOTHING`, userID, float64(models.DemoInitialBalance), now, now); err != nil {
		return nil, fmt.Errorf("create demo account: %w", err)
	}

	var a models.DemoTradingAccount
	err := q.QueryRowContext(ctx,
		`SELECT id, user_id, current_balance, created_at, updated_at FROM demotrading WHERE user_id = ?`, userID).
		Scan(&a.ID, &a.UserID, &a.CurrentBalance, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("load demo account: %w", err)
	}
	return &a, nil
}

func (r *sqliteRepository) GetOrCreateDemoAccount(ctx context.Context, userID int64) (*models.DemoTradingAccount, error) {
	return ensureDemoAccount(ctx, r.db, userID, r.now())
}

func (r *sqliteRepository) ListDemoTransactions(ctx context.Context, userID int64) ([]models.DemoTradingTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.account_id, t.stock_symbol, t.side, t.quantity, t.price, t.created_at
		FROM demotrading_transactions t
		JOIN demotrading a ON a.id = t.account_id
		WHERE a.user_id = ?
		ORDER BY t.created_at DESC, t.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list demo transactions: %w", err)
	}
	defer rows.Close()

	txs := []models.DemoTradingTransaction{}
	for rows.Next() {
		var t models.DemoTradingTransaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.StockSymbol, &t.Side, &t.Quantity, &t.Price, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan demo transaction: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate demo transactions: %w", err)
	}
	return txs, nil
}

// RecordDemoTransaction appends to the journal. The account balance is left untouched.
func (r *sqliteRepository) RecordDemoTransaction(ctx context.Context, userID, accountID int64, in models.NewDemoTransaction) (*models.DemoTradingTransaction, error) {
	var created *models.DemoTradingTransaction
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var owner int64
		err := tx.QueryRowContext(ctx, `SELECT user_id FROM demotrading WHERE id = ?`, accountID).Scan(&owner)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && owner != userID) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("find demo account %d: %w", accountID, err)
		}

		now := r.now()
		res, err := tx.ExecContext(ctx, `
			INSERT INTO demotrading_transactions (account_id, stock_symbol, side, quantity, price, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			accountID, in.StockSymbol, in.Side, in.Quantity, in.Price, now)
		if err != nil {
			return fmt.Errorf("insert demo transaction: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("read demo transaction id: %w", err)
		}
		created = &models.DemoTradingTransaction{
			ID:          id,
			AccountID:   accountID,
			StockSymbol: in.StockSymbol,
			Side:        in.Side,
			Quantity:    in.Quantity,
			Price:       in.Price,
			CreatedAt:   now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *sqliteRepository) DeleteDemoTransaction(ctx context.Context, userID, txID int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM demotrading_transactions
		WHERE id = ? AND account_id IN (SELECT id FROM demotrading WHERE user_id = ?)`, txID, userID)
	if err != nil {
		return fmt.Errorf("delete demo transaction %d: %w", txID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete demo transaction %d: %w", txID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetDemoAccount clears the journal and restores the initial balance.
func (r *sqliteRepository) ResetDemoAccount(ctx context.Context, userID int64) (*models.DemoTradingAccount, error) {
	var account *models.DemoTradingAccount
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		now := r.now()
		a, err := ensureDemoAccount(ctx, tx, userID, now)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM demotrading_transactions WHERE account_id = ?`, a.ID); err != nil {
			return fmt.Errorf("clear demo journal: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE demotrading SET current_balance = ?, updated_at = ? WHERE id = ?`,
			float64(models.DemoInitialBalance), now, a.ID); err != nil {
			return fmt.Errorf("reset demo balance: %w", err)
		}
		a.CurrentBalance = models.DemoInitialBalance
		a.UpdatedAt = now
		account = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}
