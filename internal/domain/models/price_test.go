package models

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalClose_Unmarshal(t *testing.T) {
	var cells []OptionalClose
	require.NoError(t, json.Unmarshal([]byte(`[101.5, null, "99.25", "n/a", true, {"x":1}, 0]`), &cells))
	require.Len(t, cells, 7)

	assert.Equal(t, SomeClose(101.5), cells[0])
	assert.False(t, cells[1].Valid)
	assert.Equal(t, SomeClose(99.25), cells[2])
	assert.False(t, cells[3].Valid)
	assert.False(t, cells[4].Valid)
	assert.False(t, cells[5].Valid)
	assert.True(t, cells[6].Valid)
	assert.False(t, cells[6].Usable())
}

func TestOptionalClose_Marshal(t *testing.T) {
	b, err := json.Marshal([]OptionalClose{SomeClose(3.5), NoClose(), SomeClose(math.NaN())})
	require.NoError(t, err)
	assert.JSONEq(t, `[3.5, null, null]`, string(b))
}

func TestInsufficientDataError(t *testing.T) {
	var err error = &InsufficientDataError{Ticker: "ABC", Usable: 12, Need: 30}
	assert.True(t, errors.Is(err, ErrInsufficientData))
	assert.Contains(t, err.Error(), "ABC")
	assert.Contains(t, err.Error(), "12")

	empty := &InsufficientDataError{Ticker: "ZZZ", Need: 30}
	assert.Contains(t, empty.Error(), "No data found for ZZZ")
	assert.Contains(t, empty.Error(), "0 usable closes, need 30")
}

func TestLinearModelAt(t *testing.T) {
	m := LinearModel{Slope: 0.5, Intercept: 10}
	assert.Equal(t, 10.0, m.At(0))
	assert.Equal(t, 15.0, m.At(10))
}
