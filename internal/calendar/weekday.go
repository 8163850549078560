package calendar

import (
	"fmt"
	"time"
)

// ISODate is the wire layout for calendar days.
const ISODate = "2006-01-02"

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseDate parses an ISO date in the local zone.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(ISODate, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders the ISO day of t.
func FormatDate(t time.Time) string {
	return t.Format(ISODate)
}

// IsWeekday reports whether date falls Monday through Friday.
func IsWeekday(date time.Time) bool {
	wd := date.Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

// daysBetween counts calendar days from a to b, ignoring DST shifts.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// CountWeekdaysInRange returns the number of Monday..Friday dates in
// [start, end], or 0 when start is after end.
func CountWeekdaysInRange(start, end time.Time) int {
	span := daysBetween(start, end)
	if span < 0 {
		return 0
	}
	days := span + 1
	count := (days / 7) * 5
	wd := start.Weekday()
	for i := 0; i < days%7; i++ {
		d := time.Weekday((int(wd) + i) % 7)
		if d >= time.Monday && d <= time.Friday {
			count++
		}
	}
	return count
}

// WeekdayOrdinal reports which weekday of the range target is, and how many
// weekdays the range holds. Target must lie within the range.
func WeekdayOrdinal(rangeStart, rangeEnd, target time.Time) (ordinal, total int) {
	return CountWeekdaysInRange(rangeStart, target), CountWeekdaysInRange(rangeStart, rangeEnd)
}

// NormalizeSelection orders two drag endpoints so start <= end.
func NormalizeSelection(a, b time.Time) (start, end time.Time) {
	if daysBetween(a, b) < 0 {
		return Day(b), Day(a)
	}
	return Day(a), Day(b)
}

// InSelection reports whether day should be highlighted for a drag between a
// and b. Weekends are never highlighted.
func InSelection(a, b, day time.Time) bool {
	if !IsWeekday(day) {
		return false
	}
	start, end := NormalizeSelection(a, b)
	return daysBetween(start, day) >= 0 && daysBetween(day, end) >= 0
}

// Contains reports whether date falls inside the block's inclusive range.
func (b TimeBlock) Contains(date time.Time) bool {
	return daysBetween(b.StartDate, date) >= 0 && daysBetween(date, b.EndDate) >= 0
}

// BlocksActiveOn returns the blocks covering date. Work tracking is
// weekday-only, so weekends always yield nothing.
func BlocksActiveOn(blocks []TimeBlock, date time.Time) []TimeBlock {
	if !IsWeekday(date) {
		return nil
	}
	var active []TimeBlock
	for _, b := range blocks {
		if b.Contains(date) {
			active = append(active, b)
		}
	}
	return active
}

// Progress renders "Day N of M" for a block active on date.
func Progress(b TimeBlock, date time.Time) (string, bool) {
	if !IsWeekday(date) || !b.Contains(date) {
		return "", false
	}
	n, m := WeekdayOrdinal(b.StartDate, b.EndDate, date)
	return fmt.Sprintf("Day %d of %d", n, m), true
}
