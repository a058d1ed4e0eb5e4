package order

import (
	"strings"
	"time"

	// Embedded so the configured zone resolves on minimal container images.
	_ "time/tzdata"
)

// DefaultTimezone is the zone every calendar date is interpreted in
const DefaultTimezone = "Asia/Ho_Chi_Minh"

// DateLayout is the ISO calendar date used as a bucket key
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	"02/01/2006",
	"2/1/2006",
	"2006/01/02",
	"02-01-2006",
}

var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// Calendar interprets dates in a single named zone. Grouping, filtering and
// "today" all go through the same Calendar so they cannot disagree about
// which day an order falls on.
type Calendar struct {
	loc *time.Location
}

// NewCalendar returns a Calendar for the named zone
func NewCalendar(zone string) (*Calendar, error) {
	if zone == "" {
		zone = DefaultTimezone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, err
	}
	return &Calendar{loc: loc}, nil
}

// MustCalendar is NewCalendar that panics on an unknown zone
func MustCalendar(zone string) *Calendar {
	c, err := NewCalendar(zone)
	if err != nil {
		panic(err)
	}
	return c
}

// Location returns the calendar's zone
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// ParseDate converts an upstream date into midnight of that calendar day.
// Instants carrying an offset are first converted into the calendar zone.
// The zero time is returned for empty or unparsable input.
func (c *Calendar) ParseDate(raw string) time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, s, c.loc); err == nil {
			return c.Truncate(t)
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, c.loc); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Truncate returns midnight, in the calendar zone, of the day containing t
func (c *Calendar) Truncate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	local := t.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc)
}

// Today returns midnight of the current day
func (c *Calendar) Today(now time.Time) time.Time {
	return c.Truncate(now)
}

// Key formats a day as its bucket key, "" for the zero time
func (c *Calendar) Key(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(c.loc).Format(DateLayout)
}

var weekdayLabels = [...]string{
	time.Sunday:    "Chủ nhật",
	time.Monday:    "Thứ 2",
	time.Tuesday:   "Thứ 3",
	time.Wednesday: "Thứ 4",
	time.Thursday:  "Thứ 5",
	time.Friday:    "Thứ 6",
	time.Saturday:  "Thứ 7",
}

// WeekdayLabel returns the Vietnamese weekday name of t
func WeekdayLabel(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return weekdayLabels[t.Weekday()]
}
