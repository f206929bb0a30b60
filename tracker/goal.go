package tracker

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/adriamunoz1984/jobtracker/date"
)

// WeeklyGoal holds earnings and savings targets for one calendar week.
// At most one goal exists per (WeekStart, WeekEnd) pair.
type WeeklyGoal struct {
	Meta
	WeekStart      date.Date       `json:"weekStart"`
	WeekEnd        date.Date       `json:"weekEnd"`
	EarningsTarget decimal.Decimal `json:"earningsTarget"`
	SavingsTarget  decimal.Decimal `json:"savingsTarget"`
}

func (g *WeeklyGoal) Clone() *WeeklyGoal {
	c := *g
	return &c
}

// FindWeekGoal returns the goal matching the week, if one exists.
// Pure lookup, no side effects.
func FindWeekGoal(goals []*WeeklyGoal, week date.Range) (*WeeklyGoal, bool) {
	for _, g := range goals {
		if g.WeekStart == week.From && g.WeekEnd == week.To {
			return g, true
		}
	}
	return nil, false
}

// GetOrCreateWeekGoal returns the goal for the week, creating a
// zero-target default in the store when none exists. Creation is
// explicit here rather than hidden behind a lookup.
func GetOrCreateWeekGoal(ctx context.Context, s *Store[*WeeklyGoal], week date.Range) *WeeklyGoal {
	if g, ok := FindWeekGoal(s.Snapshot(), week); ok {
		return g
	}
	g := &WeeklyGoal{
		WeekStart:      week.From,
		WeekEnd:        week.To,
		EarningsTarget: decimal.Zero,
		SavingsTarget:  decimal.Zero,
	}
	s.Create(ctx, g)
	return g
}
