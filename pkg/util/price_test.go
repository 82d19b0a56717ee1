package util

import (
    "math"
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestRoundPrice(t *testing.T) {
    assert.Equal(t, 134.57, RoundPrice(134.5678))
    assert.Equal(t, 1.01, RoundPrice(1.005))
    assert.Equal(t, 100.0, RoundPrice(100))
    assert.True(t, math.IsNaN(RoundPrice(math.NaN())))
}

func TestFormatPrice(t *testing.T) {
    assert.Equal(t, "135.00", FormatPrice(135))
    assert.Equal(t, "0.10", FormatPrice(0.1))
    assert.Equal(t, "-", FormatPrice(math.Inf(1)))
}
