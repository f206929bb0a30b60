package tracker

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod describes how a job was paid.
type PaymentMethod string

const (
	PayCash   PaymentMethod = "Cash"
	PayCheck  PaymentMethod = "Check"
	PayCharge PaymentMethod = "Charge"
	PayZelle  PaymentMethod = "Zelle"
)

// Job is a single unit of work with its payment state.
type Job struct {
	Meta
	CompanyName   string          `json:"companyName"`
	Address       string          `json:"address,omitempty"`
	City          string          `json:"city,omitempty"`
	Date          time.Time       `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	IsPaid        bool            `json:"isPaid"`
	PaymentMethod PaymentMethod   `json:"paymentMethod,omitempty"`
	PaidToMe      bool            `json:"paidToMe,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

// Clone returns a shallow copy. Decimal values are immutable, so a
// field copy is sufficient.
func (j *Job) Clone() *Job {
	c := *j
	return &c
}

// When returns the job's working date for day-granular queries.
func (j *Job) When() time.Time { return j.Date }

// Value returns the job's amount for aggregate folds.
func (j *Job) Value() decimal.Decimal { return j.Amount }
