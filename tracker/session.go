// ABOUTME: Session wires the per-user collection stores together so
// ABOUTME: screens receive injected stores instead of global singletons.
package tracker

import (
	"context"

	"github.com/rs/zerolog"
)

// Session bundles one user session's collection stores over a shared
// local database and remote document store. Construct one per
// signed-in session and hand its stores to whatever needs them.
type Session struct {
	Jobs     *Store[*Job]
	Expenses *Store[*Expense]
	Personal *Store[*PersonalExpense]
	Goals    *Store[*WeeklyGoal]

	// Projector settles expenses against the session's expense store.
	Projector *Projector

	stops []func()
}

// NewSession builds the collection stores. cfg.BaseURL may be empty
// for a purely local setup; the stores then never attempt remote sync.
func NewSession(local *Local, cfg RemoteConfig, log zerolog.Logger) *Session {
	var (
		jobs     MirrorProvider[*Job]
		expenses MirrorProvider[*Expense]
		personal MirrorProvider[*PersonalExpense]
		goals    MirrorProvider[*WeeklyGoal]
	)
	if cfg.BaseURL != "" {
		jobs = NewRemoteCollection[*Job](cfg, "jobs")
		expenses = NewRemoteCollection[*Expense](cfg, "expenses")
		personal = NewRemoteCollection[*PersonalExpense](cfg, "personal_expenses")
		goals = NewRemoteCollection[*WeeklyGoal](cfg, "weekly_goals")
	}

	s := &Session{
		Jobs: NewStore[*Job]("jobs", local, jobs,
			WithLogger[*Job](log), WithOrder[*Job](Order{Field: "date", Desc: true})),
		Expenses: NewStore[*Expense]("expenses", local, expenses,
			WithLogger[*Expense](log), WithOrder[*Expense](Order{Field: "dueDate", Desc: true})),
		Personal: NewStore[*PersonalExpense]("personal_expenses", local, personal,
			WithLogger[*PersonalExpense](log), WithOrder[*PersonalExpense](Order{Field: "date", Desc: true})),
		Goals: NewStore[*WeeklyGoal]("weekly_goals", local, goals,
			WithLogger[*WeeklyGoal](log)),
	}
	s.Projector = NewProjector(s.Expenses, log)
	return s
}

// Start binds every store to the identity source. Each store
// initializes from the current identity and re-initializes on every
// identity transition.
func (s *Session) Start(ctx context.Context, src IdentitySource) error {
	stop, err := s.Jobs.Bind(ctx, src)
	if err != nil {
		return err
	}
	s.stops = append(s.stops, stop)

	stop, err = s.Expenses.Bind(ctx, src)
	if err != nil {
		s.Close()
		return err
	}
	s.stops = append(s.stops, stop)

	stop, err = s.Personal.Bind(ctx, src)
	if err != nil {
		s.Close()
		return err
	}
	s.stops = append(s.stops, stop)

	stop, err = s.Goals.Bind(ctx, src)
	if err != nil {
		s.Close()
		return err
	}
	s.stops = append(s.stops, stop)
	return nil
}

// Close releases all subscriptions and drains pending writes.
func (s *Session) Close() {
	for _, stop := range s.stops {
		stop()
	}
	s.stops = nil
	s.Jobs.Close()
	s.Expenses.Close()
	s.Personal.Close()
	s.Goals.Close()
}
