package util

import (
	"fmt"
	"strconv"
	"time"
)

// Log timestamps carry no zone; treat them as UTC.
const logTimestampLayout = "2006-01-02T15:04:05.000"

// ParseTimeFlexible parses RFC3339 (with or without fractional seconds),
// the bare emulator log timestamp layout, or epoch milliseconds.
func ParseTimeFlexible(timeStr string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, timeStr)
	if err == nil {
		return t.UTC(), nil
	}
	t, err = time.Parse(time.RFC3339, timeStr)
	if err == nil {
		return t.UTC(), nil
	}
	t, err = time.Parse(logTimestampLayout, timeStr)
	if err == nil {
		return t.UTC(), nil
	}

	ms, err := strconv.ParseInt(timeStr, 10, 64)
	if err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}

	return time.Time{}, fmt.Errorf("invalid time format: %s", timeStr)
}
