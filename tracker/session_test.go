package tracker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	local, err := OpenLocal(filepath.Join(t.TempDir(), "tracker.db"))
	if err != nil {
		t.Fatalf("open local: %v", err)
	}
	t.Cleanup(func() {
		if cerr := local.Close(); cerr != nil {
			t.Fatalf("close local: %v", cerr)
		}
	})
	sess := NewSession(local, RemoteConfig{}, zerolog.Nop())
	t.Cleanup(sess.Close)
	return sess
}

func TestSessionLocalOnly(t *testing.T) {
	sess := newTestSession(t)
	ctx := context.Background()
	src := &fakeIdentitySource{cur: Identity{UserID: "guest"}}

	if err := sess.Start(ctx, src); err != nil {
		t.Fatalf("start: %v", err)
	}

	id := sess.Jobs.Create(ctx, &Job{
		CompanyName: "Acme Roofing",
		Date:        time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
		Amount:      decimal.NewFromInt(400),
	})
	if id == "" {
		t.Fatal("create returned empty id")
	}
	if sess.Jobs.Len() != 1 {
		t.Fatalf("jobs len = %d, want 1", sess.Jobs.Len())
	}
	if got := sess.Jobs.Status().State; got != StateIdle {
		t.Fatalf("state = %v, want idle without a remote", got)
	}

	// The other collections share the database but stay independent.
	if sess.Expenses.Len() != 0 {
		t.Fatalf("expenses len = %d, want 0", sess.Expenses.Len())
	}
}

func TestSessionProjectorUsesExpenseStore(t *testing.T) {
	sess := newTestSession(t)
	ctx := context.Background()
	src := &fakeIdentitySource{cur: Identity{UserID: "guest"}}
	if err := sess.Start(ctx, src); err != nil {
		t.Fatalf("start: %v", err)
	}

	id := sess.Expenses.Create(ctx, &Expense{
		Name:       "Rent",
		Amount:     decimal.NewFromInt(1200),
		Category:   CatRent,
		DueDate:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Recurrence: RecurMonthly,
	})

	ok, err := sess.Projector.MarkPaid(ctx, id)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if !ok {
		t.Fatal("mark paid reported missing expense")
	}
	if sess.Expenses.Len() != 2 {
		t.Fatalf("expenses len = %d, want paid original plus successor", sess.Expenses.Len())
	}
}
