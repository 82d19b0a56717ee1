package repository

import (
	"context"
	"fmt"
	"time"

	"TrendWatch/internal/domain/models"
	"TrendWatch/internal/domain/repository"
	"TrendWatch/pkg/database"
)

// SQLWatchlistStore keeps watchlist rows. UNIQUE(user_id, ticker) makes
// concurrent adds of the same pair collapse to one row.
type SQLWatchlistStore struct {
	db  *database.Client
	now func() time.Time
}

// NewSQLWatchlistStore creates a watchlist store.
func NewSQLWatchlistStore(db *database.Client) repository.WatchlistStore {
	return &SQLWatchlistStore{db: db, now: time.Now}
}

func (s *SQLWatchlistStore) AddIfAbsent(ctx context.Context, id models.Identity, ticker string) (bool, error) {
	q := s.db.Rebind(`INSERT INTO watchlist (user_id, ticker, created_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id, ticker) DO NOTHING`)

	res, err := s.db.DB().ExecContext(ctx, q, id.UserID, ticker, s.now().UTC().Truncate(time.Second))
	if err != nil {
		return false, fmt.Errorf("add watchlist %s: %w", ticker, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add watchlist %s: %w", ticker, err)
	}
	return n > 0, nil
}

func (s *SQLWatchlistStore) Remove(ctx context.Context, id models.Identity, ticker string) (bool, error) {
	q := s.db.Rebind(`DELETE FROM watchlist WHERE user_id = ? AND ticker = ?`)

	res, err := s.db.DB().ExecContext(ctx, q, id.UserID, ticker)
	if err != nil {
		return false, fmt.Errorf("remove watchlist %s: %w", ticker, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove watchlist %s: %w", ticker, err)
	}
	return n > 0, nil
}

func (s *SQLWatchlistStore) ListFor(ctx context.Context, id models.Identity) ([]string, error) {
	q := s.db.Rebind(`SELECT ticker FROM watchlist WHERE user_id = ? ORDER BY id`)

	rows, err := s.db.DB().QueryContext(ctx, q, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	defer rows.Close()

	tickers := make([]string, 0)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan watchlist: %w", err)
		}
		tickers = append(tickers, t)
	}
	return tickers, rows.Err()
}
