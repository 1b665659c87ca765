package quote

import (
	"fmt"
	"time"
)

const (
	quoteIDPrefix    = "BKS"
	defaultValidDays = 30
)

// NewQuoteID builds a human-readable, minute-resolution identifier. Two
// quotes generated in the same minute share it; the storage row id is the
// durable key.
func NewQuoteID(now time.Time) string {
	return fmt.Sprintf("%s-%s", quoteIDPrefix, now.Format("20060102-1504"))
}

// ValidUntil is the expiry date of a quote, truncated to calendar-date
// granularity. Non-positive days fall back to the standard 30-day window.
func ValidUntil(now time.Time, days int) time.Time {
	if days <= 0 {
		days = defaultValidDays
	}
	d := now.AddDate(0, 0, days)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}
