// ABOUTME: Pure derived views over a collection snapshot: range filters,
// ABOUTME: category breakdowns and the weekly earnings summary.
package tracker

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/adriamunoz1984/jobtracker/date"
)

// Dated is any record with a designated date field. Range queries
// compare at calendar-day granularity: the timestamp's wall-clock day
// in its own offset, never the instant. Records stamped in different
// time zones therefore land on the day a human would read off them.
type Dated interface{ When() time.Time }

// Valued is any record with an amount.
type Valued interface{ Value() decimal.Decimal }

// Grouped is any record with a category.
type Grouped interface{ Group() Category }

// InRange returns the records whose day falls inside r, inclusive.
func InRange[T Dated](items []T, r date.Range) []T {
	var out []T
	for _, it := range items {
		if r.Contains(date.Of(it.When())) {
			out = append(out, it)
		}
	}
	return out
}

// OnDay returns the records dated exactly on day.
func OnDay[T Dated](items []T, day date.Date) []T {
	return InRange(items, date.Range{From: day, To: day})
}

// OfCategory returns the records in the given category.
func OfCategory[T Grouped](items []T, c Category) []T {
	var out []T
	for _, it := range items {
		if it.Group() == c {
			out = append(out, it)
		}
	}
	return out
}

// Total sums the amounts of records inside r.
func Total[T interface {
	Dated
	Valued
}](items []T, r date.Range) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range InRange(items, r) {
		sum = sum.Add(it.Value())
	}
	return sum
}

// Breakdown sums amounts per category inside r. Every known category
// appears in the result, zero when nothing matched; downstream chart
// rendering depends on that completeness.
func Breakdown[T interface {
	Dated
	Valued
	Grouped
}](items []T, r date.Range) map[Category]decimal.Decimal {
	out := make(map[Category]decimal.Decimal, len(Categories()))
	for _, c := range Categories() {
		out[c] = decimal.Zero
	}
	for _, it := range InRange(items, r) {
		out[it.Group()] = out[it.Group()].Add(it.Value())
	}
	return out
}

// WeekSummary aggregates one week of jobs. NetEarnings reflects the
// commission split: half the gross, minus cash already pocketed,
// minus payments made directly to the worker.
type WeekSummary struct {
	TotalEarnings  decimal.Decimal
	TotalUnpaid    decimal.Decimal
	CashPayments   decimal.Decimal
	PaidToMeAmount decimal.Decimal
	NetEarnings    decimal.Decimal
}

var two = decimal.NewFromInt(2)

// SummarizeWeek folds the jobs inside r into a WeekSummary.
// NetEarnings = TotalEarnings/2 - CashPayments - PaidToMeAmount.
func SummarizeWeek(jobs []*Job, r date.Range) WeekSummary {
	s := WeekSummary{
		TotalEarnings:  decimal.Zero,
		TotalUnpaid:    decimal.Zero,
		CashPayments:   decimal.Zero,
		PaidToMeAmount: decimal.Zero,
	}
	for _, j := range InRange(jobs, r) {
		s.TotalEarnings = s.TotalEarnings.Add(j.Amount)
		if !j.IsPaid {
			s.TotalUnpaid = s.TotalUnpaid.Add(j.Amount)
			continue
		}
		if j.PaymentMethod == PayCash {
			s.CashPayments = s.CashPayments.Add(j.Amount)
		}
		if j.PaidToMe {
			s.PaidToMeAmount = s.PaidToMeAmount.Add(j.Amount)
		}
	}
	s.NetEarnings = s.TotalEarnings.Div(two).Sub(s.CashPayments).Sub(s.PaidToMeAmount)
	return s
}

// LedgerForDay returns the day's ledger entries from an expense
// snapshot.
func LedgerForDay(expenses []*Expense, day date.Date) []*Expense {
	var out []*Expense
	for _, e := range OnDay(expenses, day) {
		if e.Ledger {
			out = append(out, e)
		}
	}
	return out
}
