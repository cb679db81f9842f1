package utils

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used for keys and exports.
const DateLayout = "2006-01-02"

// DateOf normalizes a timestamp to its UTC calendar date (midnight UTC).
// It is the single place timestamps become dates.
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DateKey returns the YYYY-MM-DD key of t's UTC calendar date.
func DateKey(t time.Time) string {
	return DateOf(t).Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string as a UTC date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// Today returns the current UTC date.
func Today() time.Time {
	return DateOf(time.Now())
}

// Window is an inclusive range of UTC calendar dates.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow normalizes both bounds to UTC dates.
func NewWindow(start, end time.Time) Window {
	return Window{Start: DateOf(start), End: DateOf(end)}
}

// Contains reports whether t's UTC date falls inside the window.
func (w Window) Contains(t time.Time) bool {
	d := DateOf(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// Valid reports whether the window is non-empty.
func (w Window) Valid() bool {
	return !w.Start.IsZero() && !w.End.Before(w.Start)
}

func (w Window) String() string {
	return w.Start.Format(DateLayout) + ".." + w.End.Format(DateLayout)
}
