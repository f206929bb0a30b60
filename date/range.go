package date

import "fmt"

// Range is an inclusive range of calendar days.
type Range struct{ From, To Date }

// NewRange returns the range [from, to]. Panics if to is before from.
func NewRange(from, to Date) Range {
	if to.Before(from) {
		panic(fmt.Sprintf("invalid range: %s before %s", to, from))
	}
	return Range{From: from, To: to}
}

// Week returns the Monday-to-Sunday week containing d.
func Week(d Date) Range {
	return Range{From: d.StartOfWeek(), To: d.EndOfWeek()}
}

// Contains reports whether day is inside the range, boundaries included.
func (r Range) Contains(day Date) bool {
	return !day.Before(r.From) && !day.After(r.To)
}

// Days returns the number of days in the range, boundaries included.
func (r Range) Days() int {
	n := 1
	for d := r.From; d.Before(r.To); d = d.AddDays(1) {
		n++
	}
	return n
}

// String formats the range as "2006-01-02..2006-01-02".
func (r Range) String() string { return r.From.String() + ".." + r.To.String() }
