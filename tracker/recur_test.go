package tracker

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adriamunoz1984/jobtracker/date"
)

func TestRecurrenceAdvance(t *testing.T) {
	at := func(s string) time.Time { return date.MustParse(s).Time() }
	cases := []struct {
		name string
		rec  Recurrence
		from string
		want string
	}{
		{"daily", RecurDaily, "2024-01-05", "2024-01-06"},
		{"weekly", RecurWeekly, "2024-01-05", "2024-01-12"},
		{"biweekly", RecurBiweekly, "2024-01-05", "2024-01-19"},
		{"monthly", RecurMonthly, "2024-01-15", "2024-02-15"},
		{"monthly clamps to leap February", RecurMonthly, "2024-01-31", "2024-02-29"},
		{"monthly clamps to short February", RecurMonthly, "2023-01-31", "2023-02-28"},
		{"monthly across year end", RecurMonthly, "2023-12-31", "2024-01-31"},
		{"quarterly", RecurQuarterly, "2024-01-31", "2024-04-30"},
		{"yearly", RecurYearly, "2024-05-01", "2025-05-01"},
		{"yearly clamps leap day", RecurYearly, "2024-02-29", "2025-02-28"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.rec.Advance(at(tc.from))
			assert.Equal(t, tc.want, date.Of(got).String())
		})
	}
}

func TestRecurrenceAdvanceDropsTimeOfDay(t *testing.T) {
	due := time.Date(2024, 1, 5, 23, 45, 0, 0, time.FixedZone("UTC-6", -6*3600))
	got := RecurDaily.Advance(due)
	assert.Equal(t, "2024-01-06", date.Of(got).String())
}

func TestParseRecurrence(t *testing.T) {
	r, err := ParseRecurrence("Monthly")
	require.NoError(t, err)
	assert.Equal(t, RecurMonthly, r)

	_, err = ParseRecurrence("fortnightly")
	assert.Error(t, err)
}

func newExpenseStore(t *testing.T) *Store[*Expense] {
	t.Helper()
	local, err := OpenLocal(filepath.Join(t.TempDir(), "expenses.db"))
	if err != nil {
		t.Fatalf("open local: %v", err)
	}
	t.Cleanup(func() { _ = local.Close() })

	seq := 0
	s := NewStore[*Expense]("expenses", local, nil,
		WithIDFunc[*Expense](func() string { seq++; return fmt.Sprintf("exp-%03d", seq) }),
	)
	t.Cleanup(s.Close)
	if err := s.Initialize(context.Background(), Identity{UserID: "guest"}); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return s
}

func TestMarkPaidTerminalExpense(t *testing.T) {
	ctx := context.Background()
	s := newExpenseStore(t)
	p := NewProjector(s, zerolog.Nop())

	id := s.Create(ctx, &Expense{
		Name:    "dump fee",
		Amount:  decimal.NewFromInt(45),
		DueDate: date.MustParse("2024-03-01").Time(),
	})

	ok, err := p.MarkPaid(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)

	require.Equal(t, 1, s.Len(), "one-time expense must not spawn a successor")
	got, _ := s.ByID(id)
	assert.True(t, got.IsPaid)
}

func TestMarkPaidUnknownID(t *testing.T) {
	s := newExpenseStore(t)
	p := NewProjector(s, zerolog.Nop())
	ok, err := p.MarkPaid(context.Background(), "exp-nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMarkPaidCreatesSuccessor(t *testing.T) {
	ctx := context.Background()
	s := newExpenseStore(t)
	p := NewProjector(s, zerolog.Nop())

	id := s.Create(ctx, &Expense{
		Name:       "truck insurance",
		Amount:     decimal.NewFromInt(210),
		Category:   CatInsurance,
		DueDate:    date.MustParse("2024-01-31").Time(),
		Recurrence: RecurMonthly,
	})

	ok, err := p.MarkPaid(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, s.Len())

	var successor *Expense
	for _, e := range s.Snapshot() {
		if e.ID != id {
			successor = e
		}
	}
	require.NotNil(t, successor)
	assert.False(t, successor.IsPaid, "successor starts unpaid")
	assert.Equal(t, "truck insurance", successor.Name)
	assert.True(t, successor.Amount.Equal(decimal.NewFromInt(210)))
	assert.Equal(t, "2024-02-29", date.Of(successor.DueDate).String())
	assert.Equal(t, "2024-03-29", date.Of(successor.NextDue).String(), "next due precomputed one period out")
	assert.NotEqual(t, id, successor.ID, "successor gets its own identity")
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newExpenseStore(t)
	p := NewProjector(s, zerolog.Nop())

	id := s.Create(ctx, &Expense{
		Name:       "storage unit",
		Amount:     decimal.NewFromInt(95),
		DueDate:    date.MustParse("2024-03-10").Time(),
		Recurrence: RecurMonthly,
	})

	for i := 0; i < 3; i++ {
		ok, err := p.MarkPaid(ctx, id)
		require.NoError(t, err)
		require.True(t, ok)
	}

	matches := 0
	for _, e := range s.Snapshot() {
		if e.Name == "storage unit" && date.Of(e.DueDate).String() == "2024-04-10" {
			matches++
		}
	}
	assert.Equal(t, 1, matches, "repeated markPaid must yield at most one successor")
	assert.Equal(t, 2, s.Len())
}
