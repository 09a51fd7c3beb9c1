// Package pricing computes the cost of a trip from its day plans and the
// catalog, and turns that cost into a quoted price.
package pricing

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jinzhu/now"
)

// DateLayout is the calendar date format used across the API
const DateLayout = "2006-01-02"

// ErrEndBeforeStart is returned when a trip ends before it starts
var ErrEndBeforeStart = errors.New("end date is before start date")

// CountDays returns the number of trip days between two calendar dates,
// counting both ends: the same start and end date is a one day trip.
func CountDays(start, end time.Time) (int, error) {
	s := now.With(start.UTC()).BeginningOfDay()
	e := now.With(end.UTC()).BeginningOfDay()
	if e.Before(s) {
		return 0, ErrEndBeforeStart
	}
	return int(math.Round(e.Sub(s).Hours()/24)) + 1, nil
}

// CountDaysFromStrings parses two YYYY-MM-DD dates and counts the trip days
func CountDaysFromStrings(start, end string) (int, error) {
	s, err := ParseDate(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return 0, err
	}
	return CountDays(s, e)
}

// ParseDate parses a YYYY-MM-DD date in UTC
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return t, nil
}

// FormatDate formats a date as YYYY-MM-DD, or "" for nil
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}

// Today returns the current calendar date in loc as YYYY-MM-DD
func Today(clock func() time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.With(clock().In(loc)).BeginningOfDay().Format(DateLayout)
}
