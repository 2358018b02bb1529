package models

import (
	"strings"
	"time"
)

// DateLayout is the canonical day format used for events.
const DateLayout = "2006-01-02"

// Event is a single calendar entry pinned to one day.
type Event struct {
	ID        string    `db:"id" json:"id"`
	Date      string    `db:"event_date" json:"date"`
	Title     string    `db:"title" json:"title"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// EventRange selects events between two days, both inclusive.
type EventRange struct {
	From string
	To   string
}

// ParseDay normalises raw into a YYYY-MM-DD day. Full RFC3339 timestamps are accepted
// and truncated to their calendar day.
func ParseDay(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t.Format(DateLayout), true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.Format(DateLayout), true
	}
	if t, err := time.Parse("2006-1-2", raw); err == nil {
		return t.Format(DateLayout), true
	}
	return "", false
}

// DayOf formats t as a calendar day in its own location.
func DayOf(t time.Time) string {
	return t.Format(DateLayout)
}
