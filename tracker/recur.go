// ABOUTME: Recurrence rules and the projector that materializes the next
// ABOUTME: occurrence of a recurring expense once the current one is paid.
package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/adriamunoz1984/jobtracker/date"
)

// Recurrence is the repeat period of an expense. The zero value means
// one-time (terminal).
type Recurrence string

const (
	RecurNone      Recurrence = ""
	RecurDaily     Recurrence = "daily"
	RecurWeekly    Recurrence = "weekly"
	RecurBiweekly  Recurrence = "biweekly"
	RecurMonthly   Recurrence = "monthly"
	RecurQuarterly Recurrence = "quarterly"
	RecurYearly    Recurrence = "yearly"
)

// ParseRecurrence maps a stored string to a Recurrence.
func ParseRecurrence(s string) (Recurrence, error) {
	switch Recurrence(strings.ToLower(s)) {
	case RecurNone, RecurDaily, RecurWeekly, RecurBiweekly,
		RecurMonthly, RecurQuarterly, RecurYearly:
		return Recurrence(strings.ToLower(s)), nil
	}
	return RecurNone, fmt.Errorf("unknown recurrence %q", s)
}

// Terminal reports whether the recurrence produces no successor.
func (r Recurrence) Terminal() bool { return r == RecurNone }

// Advance returns the due date one recurrence period after t.
// Month, quarter and year additions clamp to the target month's length
// (Jan 31 + 1 month is the last day of February), never a fixed-day
// offset. The time of day is dropped; due dates are day-granular.
func (r Recurrence) Advance(t time.Time) time.Time {
	d := date.Of(t)
	switch r {
	case RecurDaily:
		d = d.AddDays(1)
	case RecurWeekly:
		d = d.AddDays(7)
	case RecurBiweekly:
		d = d.AddDays(14)
	case RecurMonthly:
		d = d.AddMonths(1)
	case RecurQuarterly:
		d = d.AddMonths(3)
	case RecurYearly:
		d = d.AddYears(1)
	default:
		return t
	}
	return d.Time()
}

// Projector settles expenses and materializes successors for recurring
// ones. It owns no state beyond the store it is given.
type Projector struct {
	store *Store[*Expense]
	log   zerolog.Logger
}

// NewProjector builds a projector over the given expense store.
func NewProjector(store *Store[*Expense], log zerolog.Logger) *Projector {
	return &Projector{store: store, log: log}
}

// MarkPaid marks the expense paid and, for a non-terminal recurrence,
// creates the next occurrence. Returns false when the id is unknown.
//
// Successor creation is idempotent: if the snapshot already holds a
// record with the same name, same amount and a due date on the computed
// next day, no duplicate is created. Calling MarkPaid twice for the
// same due date therefore yields at most one successor.
func (p *Projector) MarkPaid(ctx context.Context, id string) (bool, error) {
	cur, ok := p.store.ByID(id)
	if !ok {
		return false, nil
	}

	paid := cur.Clone()
	paid.IsPaid = true
	p.store.Update(ctx, paid)

	if paid.Recurrence.Terminal() {
		return true, nil
	}

	next := paid.Recurrence.Advance(paid.DueDate)
	if p.successorExists(paid, next) {
		p.log.Debug().
			Str("expense", paid.Name).
			Time("due", next).
			Msg("successor already present, skipping")
		return true, nil
	}

	successor := paid.Clone()
	successor.Meta = Meta{} // store assigns fresh identity
	successor.IsPaid = false
	successor.DueDate = next
	successor.NextDue = paid.Recurrence.Advance(next)
	p.store.Create(ctx, successor)
	return true, nil
}

func (p *Projector) successorExists(like *Expense, due time.Time) bool {
	day := date.Of(due)
	for _, e := range p.store.Snapshot() {
		if e.Name == like.Name && e.Amount.Equal(like.Amount) && date.Of(e.DueDate) == day {
			return true
		}
	}
	return false
}
