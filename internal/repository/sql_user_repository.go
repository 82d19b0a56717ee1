package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"TrendWatch/internal/domain/models"
	"TrendWatch/internal/domain/repository"
	"TrendWatch/pkg/database"
)

// SQLUserRepository stores accounts in the users table.
type SQLUserRepository struct {
	db  *database.Client
	now func() time.Time
}

// NewSQLUserRepository creates a user repository.
func NewSQLUserRepository(db *database.Client) repository.UserRepository {
	return &SQLUserRepository{db: db, now: time.Now}
}

func (r *SQLUserRepository) Create(ctx context.Context, username, passwordHash string) (models.User, error) {
	createdAt := r.now().UTC().Truncate(time.Second)
	q := r.db.Rebind(`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)
		ON CONFLICT (username) DO NOTHING RETURNING id`)

	var id int64
	err := r.db.DB().QueryRowContext(ctx, q, username, passwordHash, createdAt).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrDuplicateUser
	}
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}

	return models.User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
	}, nil
}

func (r *SQLUserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	q := r.db.Rebind(`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`)

	var u models.User
	err := r.db.DB().QueryRowContext(ctx, q, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}
