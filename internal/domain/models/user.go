package models

import "time"

// User is an account. PasswordHash is a bcrypt hash.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Identity is the authenticated caller, passed explicitly into watchlist operations.
type Identity struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// WatchlistEventType names watchlist changes published to the event stream.
type WatchlistEventType string

const (
	WatchlistAdded   WatchlistEventType = "added"
	WatchlistRemoved WatchlistEventType = "removed"
)

// WatchlistEvent describes a watchlist change.
type WatchlistEvent struct {
	Type       WatchlistEventType `json:"type"`
	UserID     int64              `json:"user_id"`
	Ticker     string             `json:"ticker"`
	OccurredAt time.Time          `json:"occurred_at"`
}
