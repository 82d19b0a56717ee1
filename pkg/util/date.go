package util

import "time"

// DateLayout is the calendar-day format used in views and JSON payloads.
const DateLayout = "2006-01-02"

// TruncateDay keeps only the calendar day of t, as midnight UTC.
// The wall-clock date in t's own location is what counts.
func TruncateDay(t time.Time) time.Time {
    y, m, d := t.Date()
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays moves a calendar day forward by n days. No trading calendar is applied.
func AddDays(day time.Time, n int) time.Time {
    return TruncateDay(day).AddDate(0, 0, n)
}

// FormatDay renders a calendar day as YYYY-MM-DD.
func FormatDay(t time.Time) string {
    return t.Format(DateLayout)
}

// ExchangeDay converts a unix timestamp into the calendar day seen by an exchange
// whose offset from UTC is gmtOffset seconds.
func ExchangeDay(unix int64, gmtOffset int64) time.Time {
    return TruncateDay(time.Unix(unix+gmtOffset, 0).UTC())
}
