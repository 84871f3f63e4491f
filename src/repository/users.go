package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/username/nepsefolio/backend/src/models"
)

func (r *sqliteRepository) CreateUser(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	now := r.now()
	email = strings.ToLower(strings.TrimSpace(email))

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		username, email, passwordHash, now, now)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read user id: %w", err)
	}
	return &models.User{
		ID:        id,
		Username:  username,
		Email:     email,
		Password:  passwordHash,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (r *sqliteRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password, created_at, updated_at FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email))).
		Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}
