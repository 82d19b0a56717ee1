package models

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientData   = errors.New("insufficient data")
	ErrEmptyTicker        = errors.New("ticker is required")
	ErrDuplicateUser      = errors.New("username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrMarketData         = errors.New("market data unavailable")
)

// InsufficientDataError reports a price series too short to fit.
// errors.Is(err, ErrInsufficientData) holds for it.
type InsufficientDataError struct {
	Ticker string
	Usable int
	Need   int
}

func (e *InsufficientDataError) Error() string {
	if e.Usable == 0 {
		return fmt.Sprintf("No data found for %s (0 usable closes, need %d). Try another ticker.", e.Ticker, e.Need)
	}
	return fmt.Sprintf("Not enough price history for %s: %d usable closes, need at least %d.",
		e.Ticker, e.Usable, e.Need)
}

// Is matches ErrInsufficientData.
func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}
