package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
)

const icsDateLayout = "20060102"

// CalendarEntry is one all-day calendar item.
type CalendarEntry struct {
	UID       string
	Day       time.Time
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ICSCodec converts calendar entries to and from iCalendar documents.
type ICSCodec struct {
	productID string
	name      string
}

// NewICSCodec constructs a codec stamping the given PRODID and calendar name.
func NewICSCodec(productID, name string) *ICSCodec {
	if productID == "" {
		productID = "-//peerroom//calendar//EN"
	}
	return &ICSCodec{productID: productID, name: name}
}

// Render writes entries as all-day VEVENTs.
func (c *ICSCodec) Render(entries []CalendarEntry) []byte {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(c.productID)
	if c.name != "" {
		cal.SetXWRCalName(c.name)
	}
	for _, entry := range entries {
		ev := cal.AddEvent(entry.UID)
		ev.SetSummary(entry.Title)
		ev.SetAllDayStartAt(entry.Day)
		ev.SetAllDayEndAt(entry.Day.AddDate(0, 0, 1))
		stamp := entry.UpdatedAt
		if stamp.IsZero() {
			stamp = time.Now()
		}
		ev.SetDtStampTime(stamp)
		if !entry.CreatedAt.IsZero() {
			ev.SetCreatedTime(entry.CreatedAt)
		}
		if !entry.UpdatedAt.IsZero() {
			ev.SetModifiedAt(entry.UpdatedAt)
		}
	}
	return []byte(cal.Serialize())
}

// Parse reads VEVENTs from body. Timed events are truncated to their start day;
// events without a summary or start are skipped and counted.
func (c *ICSCodec) Parse(body []byte) ([]CalendarEntry, int, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, 0, fmt.Errorf("empty calendar body")
	}
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("parse calendar: %w", err)
	}
	entries := make([]CalendarEntry, 0, len(cal.Events()))
	skipped := 0
	for _, ve := range cal.Events() {
		summary := ve.GetProperty(ical.ComponentPropertySummary)
		start := ve.GetProperty(ical.ComponentPropertyDtStart)
		if summary == nil || strings.TrimSpace(summary.Value) == "" || start == nil {
			skipped++
			continue
		}
		day, ok := parseICSDay(start.Value)
		if !ok {
			skipped++
			continue
		}
		entry := CalendarEntry{Day: day, Title: strings.TrimSpace(summary.Value)}
		if uid := ve.GetProperty(ical.ComponentPropertyUniqueId); uid != nil {
			entry.UID = uid.Value
		}
		entries = append(entries, entry)
	}
	return entries, skipped, nil
}

// parseICSDay accepts DATE and DATE-TIME values and keeps only the date part.
func parseICSDay(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if len(raw) < len(icsDateLayout) {
		return time.Time{}, false
	}
	t, err := time.Parse(icsDateLayout, raw[:len(icsDateLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
