package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// OptionalClose is a closing price cell that may be missing or unparseable.
type OptionalClose struct {
	Value float64
	Valid bool
}

// SomeClose returns a valid close.
func SomeClose(v float64) OptionalClose { return OptionalClose{Value: v, Valid: true} }

// NoClose returns a missing close.
func NoClose() OptionalClose { return OptionalClose{} }

// Usable reports whether the cell holds a finite positive price.
func (c OptionalClose) Usable() bool {
	return c.Valid && !math.IsNaN(c.Value) && !math.IsInf(c.Value, 0) && c.Value > 0
}

// UnmarshalJSON accepts numbers and numeric strings. Anything else, null included,
// decodes to a missing close rather than an error.
func (c *OptionalClose) UnmarshalJSON(b []byte) error {
	*c = OptionalClose{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*c = SomeClose(v)
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	*c = SomeClose(v)
	return nil
}

// MarshalJSON writes the number, or null when missing or not finite.
func (c OptionalClose) MarshalJSON() ([]byte, error) {
	if !c.Valid || math.IsNaN(c.Value) || math.IsInf(c.Value, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(c.Value)
}

// RawPoint is one row of a market data response, before cleaning.
type RawPoint struct {
	Date  time.Time     `json:"date"`
	Close OptionalClose `json:"close"`
}

// PricePoint is a cleaned daily close with its regression feature.
type PricePoint struct {
	Date      time.Time
	DayOffset int
	Close     float64
}

// PriceSeries holds cleaned closes in strictly increasing date order,
// with day offsets contiguous from 0.
type PriceSeries struct {
	Ticker string
	Points []PricePoint
}

// Len returns the number of points.
func (s PriceSeries) Len() int { return len(s.Points) }

// Last returns the most recent point. The series must not be empty.
func (s PriceSeries) Last() PricePoint { return s.Points[len(s.Points)-1] }

// LinearModel is close ≈ Slope*day_offset + Intercept.
type LinearModel struct {
	Slope     float64
	Intercept float64
	N         int
}

// At evaluates the fitted line at a day offset.
func (m LinearModel) At(offset int) float64 {
	return m.Slope*float64(offset) + m.Intercept
}

// ProjectedPoint is a model-evaluated close for a calendar day.
type ProjectedPoint struct {
	Date      time.Time
	DayOffset int
	Close     float64
}

// ForecastResult is recomputed per request and never persisted.
type ForecastResult struct {
	Ticker      string
	Historical  PriceSeries
	Trend       []ProjectedPoint // fitted line over the historical days
	Projected   []ProjectedPoint
	Model       LinearModel
	GeneratedAt time.Time
}
