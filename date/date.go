// Package date provides a calendar-day Date with no time-of-day or zone,
// used wherever records carrying full timestamps must be compared at
// day granularity.
package date

import (
	"encoding/json"
	"fmt"
	"time"
)

// Format is the ISO-8601 day format used for strings and JSON.
const Format = "2006-01-02"

// Date is a calendar day. The zero value is not a meaningful day;
// construct through New, Of or Parse.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date for the given year, month and day.
// Out-of-range values are carried over the way time.Date does.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.canonical().Date()
	return d
}

// Of returns the calendar day of t as observed in t's own location.
// A record stamped 2024-01-05T23:59:00Z and a boundary given as
// 2024-01-05T00:00:00+05:00 both normalize to day 2024-01-05.
func Of(t time.Time) Date {
	return New(t.Date())
}

// Today returns the current local date.
func Today() Date { return Of(time.Now()) }

// canonical is midnight UTC of the day, used for comparisons only.
func (d Date) canonical() time.Time {
	return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC)
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time { return d.canonical() }

// Year returns the year.
func (d Date) Year() int { return d.y }

// Month returns the month.
func (d Date) Month() time.Month { return d.m }

// Day returns the day of the month.
func (d Date) Day() int { return d.d }

// Weekday returns the day of the week.
func (d Date) Weekday() time.Weekday { return d.canonical().Weekday() }

// Before reports whether d is an earlier day than x.
func (d Date) Before(x Date) bool { return d.canonical().Before(x.canonical()) }

// After reports whether d is a later day than x.
func (d Date) After(x Date) bool { return d.canonical().After(x.canonical()) }

// AddDays returns the date i days later (earlier when negative).
func (d Date) AddDays(i int) Date { return New(d.y, d.m, d.d+i) }

// AddMonths returns the date n calendar months later, clamping the day
// to the target month's length: Jan 31 + 1 month is Feb 29 in a leap
// year, Feb 28 otherwise. This differs from time.Time.AddDate, which
// carries the overflow into the next month.
func (d Date) AddMonths(n int) Date {
	first := New(d.y, d.m+time.Month(n), 1)
	day := d.d
	if last := first.daysInMonth(); day > last {
		day = last
	}
	return New(first.y, first.m, day)
}

// AddYears returns the date n years later, clamping Feb 29 to Feb 28
// on non-leap targets.
func (d Date) AddYears(n int) Date {
	return New(d.y+n, d.m, 1).clampDay(d.d)
}

func (d Date) clampDay(day int) Date {
	if last := d.daysInMonth(); day > last {
		day = last
	}
	return New(d.y, d.m, day)
}

func (d Date) daysInMonth() int {
	// day 0 of the next month is the last day of this one
	return time.Date(d.y, d.m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// StartOfWeek returns the Monday on or before d.
func (d Date) StartOfWeek() Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// EndOfWeek returns the Sunday on or after d.
func (d Date) EndOfWeek() Date { return d.StartOfWeek().AddDays(6) }

// String formats the date as 2006-01-02.
func (d Date) String() string { return d.canonical().Format(Format) }

// Parse parses an ISO-8601 day string.
func Parse(s string) (Date, error) {
	t, err := time.Parse(Format, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", s, Format, err)
	}
	return New(t.Date()), nil
}

// MustParse is like Parse but panics on error. For tests and constants.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// MarshalJSON encodes the date as a JSON day string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a JSON day string.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

var _ json.Marshaler = Date{}
var _ json.Unmarshaler = (*Date)(nil)
