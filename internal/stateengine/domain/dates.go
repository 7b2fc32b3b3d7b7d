package domain

import (
	"strings"
	"time"
)

// ISODate is the canonical date layout used across the engine.
const ISODate = "2006-01-02"

// Date is a civil date with an explicit "unknown" state. Parse failures
// degrade to an unknown date instead of raising, per the engine's
// data-incompleteness policy.
type Date struct {
	Time  time.Time
	Known bool
}

// dateLayouts are the raw formats accepted from CRM and portal fields,
// tried in order. Datetime strings are truncated to their date part first.
var dateLayouts = []string{
	ISODate,
	"02/01/2006",
	"02-01-2006",
	"2006/01/02",
}

// ParseDate normalizes a raw date string to a civil date. Empty or
// unparseable input yields an unknown date, never an error.
func ParseDate(raw string) Date {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Date{}
	}
	// Truncate datetime forms ("2025-03-10T14:00:00Z", "2025-03-10 14:00").
	if len(s) > 10 && (s[10] == 'T' || s[10] == ' ') {
		s = s[:10]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t, Known: true}
		}
	}
	return Date{}
}

// ISO returns the canonical YYYY-MM-DD form, or "" when unknown.
func (d Date) ISO() string {
	if !d.Known {
		return ""
	}
	return d.Time.Format(ISODate)
}

// French returns the DD/MM/YYYY form, or "" when unknown.
func (d Date) French() string {
	if !d.Known {
		return ""
	}
	return d.Time.Format("02/01/2006")
}

// Before reports whether d is strictly before other. Unknown dates compare
// false against everything.
func (d Date) Before(other Date) bool {
	return d.Known && other.Known && d.Time.Before(other.Time)
}

// BeforeTime reports whether d is strictly before the calendar day of t.
// Unknown dates compare false.
func (d Date) BeforeTime(t time.Time) bool {
	return d.Known && d.Time.Before(Truncate(t))
}

// DaysUntil returns the number of whole days from "from" to d. The second
// return value is false when d is unknown.
func (d Date) DaysUntil(from time.Time) (int, bool) {
	if !d.Known {
		return 0, false
	}
	from = Truncate(from)
	return int(d.Time.Sub(from).Hours() / 24), true
}

// Truncate drops the time-of-day component, keeping a civil date in UTC.
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
