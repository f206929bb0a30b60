package tracker

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category classifies expenses for breakdowns. The set is closed so
// chart rendering can rely on every category appearing in a breakdown.
type Category string

const (
	CatRent          Category = "Rent"
	CatUtilities     Category = "Utilities"
	CatFood          Category = "Food"
	CatTransport     Category = "Transport"
	CatInsurance     Category = "Insurance"
	CatSubscriptions Category = "Subscriptions"
	CatOther         Category = "Other"
)

// Categories lists every known category in display order.
func Categories() []Category {
	return []Category{
		CatRent, CatUtilities, CatFood, CatTransport,
		CatInsurance, CatSubscriptions, CatOther,
	}
}

// Expense is a bill or outgoing payment. Recurring expenses carry a
// non-terminal Recurrence and a precomputed next due date; ledger
// entries record day-to-day spending with no due-date semantics beyond
// the day itself.
type Expense struct {
	Meta
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	Category   Category        `json:"category"`
	DueDate    time.Time       `json:"dueDate"`
	IsPaid     bool            `json:"isPaid"`
	Recurrence Recurrence      `json:"recurrence,omitempty"`
	NextDue    time.Time       `json:"nextDue,omitempty"`
	Ledger     bool            `json:"ledger,omitempty"`
	Notes      string          `json:"notes,omitempty"`
}

func (e *Expense) Clone() *Expense {
	c := *e
	return &c
}

// When returns the due date for day-granular queries.
func (e *Expense) When() time.Time { return e.DueDate }

// Value returns the expense amount for aggregate folds.
func (e *Expense) Value() decimal.Decimal { return e.Amount }

// Group returns the expense category for breakdowns.
func (e *Expense) Group() Category { return e.Category }

// PersonalExpense is an out-of-pocket expense kept apart from the
// business ledger.
type PersonalExpense struct {
	Meta
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	Category Category        `json:"category"`
	Date     time.Time       `json:"date"`
}

func (p *PersonalExpense) Clone() *PersonalExpense {
	c := *p
	return &c
}

func (p *PersonalExpense) When() time.Time        { return p.Date }
func (p *PersonalExpense) Value() decimal.Decimal { return p.Amount }
func (p *PersonalExpense) Group() Category        { return p.Category }
