// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import "time"

// TimeLayout is RFC 3339 with fixed-width nanoseconds. Unlike
// time.RFC3339Nano it never trims trailing zeros, so lexicographic order
// of the stored text matches chronological order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTime renders t in UTC using TimeLayout. All timestamp columns
// store this form.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime reads a stored timestamp. RFC3339 parsing accepts any
// fractional-second width, so rows written by older builds still load.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
