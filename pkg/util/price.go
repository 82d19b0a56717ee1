package util

import (
    "math"

    "github.com/shopspring/decimal"
)

// PricePlaces is the number of decimals prices are shown with.
const PricePlaces = 2

// RoundPrice rounds half away from zero to PricePlaces decimals.
// Non-finite inputs are returned unchanged.
func RoundPrice(v float64) float64 {
    if math.IsNaN(v) || math.IsInf(v, 0) {
        return v
    }
    return decimal.NewFromFloat(v).Round(PricePlaces).InexactFloat64()
}

// FormatPrice renders a price with exactly PricePlaces decimals.
func FormatPrice(v float64) string {
    if math.IsNaN(v) || math.IsInf(v, 0) {
        return "-"
    }
    return decimal.NewFromFloat(v).StringFixed(PricePlaces)
}
