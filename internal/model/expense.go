package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseStatus enum constants
const (
	ExpenseStatusActive    = "ACTIVE"
	ExpenseStatusCancelled = "CANCELLED"
)

// Periodicity enum constants
const (
	PeriodicityMonthly   = "MONTHLY"
	PeriodicityQuarterly = "QUARTERLY"
	PeriodicityAnnual    = "ANNUAL"
	PeriodicityOneTime   = "ONE_TIME"
)

// Currency enum constants (base currency: BRL)
const (
	CurrencyBRL = "BRL"
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
)

// Expense represents a recurring or one-time cost entry with multi-currency
// support (base: BRL). Visibility and approval are gated by company membership
// and owner/creator identity, never by the expense row alone.
type Expense struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code        string     `gorm:"type:varchar(30);uniqueIndex;not null" json:"code"` // EXP-YYYYMMDD-NNNNN
	ServiceName string     `gorm:"type:varchar(255);not null" json:"service_name"`
	Description string     `gorm:"type:text" json:"description"`
	CategoryID  *uuid.UUID `gorm:"type:uuid;index" json:"category_id"`
	Category    *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	CompanyID    uuid.UUID   `gorm:"type:uuid;not null;index" json:"company_id"`
	Company      *Company    `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	DepartmentID *uuid.UUID  `gorm:"type:uuid;index" json:"department_id"`
	Department   *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`

	// OwnerID is the responsible approver candidate; CreatedByID is the creator.
	OwnerID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner       *User      `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	CreatedByID *uuid.UUID `gorm:"type:uuid;index" json:"created_by_id"`
	CreatedBy   *User      `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`

	// Currency & conversion (value_brl = value * exchange_rate)
	Value        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"value"`
	Currency     string          `gorm:"type:varchar(10);not null;default:'BRL'" json:"currency"`
	ExchangeRate decimal.Decimal `gorm:"type:decimal(18,6);not null;default:1" json:"exchange_rate"` // 1 if BRL
	ValueBRL     decimal.Decimal `gorm:"column:value_brl;type:decimal(18,4);not null" json:"value_brl"`

	// Recurrence. StartDate anchors the schedule; ONE_TIME never recurs.
	Periodicity string    `gorm:"type:varchar(20);not null;default:'MONTHLY'" json:"periodicity"`
	StartDate   time.Time `gorm:"type:date;not null" json:"start_date"`

	Status        string     `gorm:"type:varchar(20);not null;default:'ACTIVE';index" json:"status"`
	CancelledAt   *time.Time `json:"cancelled_at"`
	CancelledByID *uuid.UUID `gorm:"type:uuid" json:"cancelled_by_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsCancelled reports whether the expense was cancelled (no further monthly
// validations are generated or predicted for it).
func (e *Expense) IsCancelled() bool {
	return e.Status == ExpenseStatusCancelled || e.CancelledAt != nil
}

// IsRecurring reports whether the periodicity generates monthly validations.
func (e *Expense) IsRecurring() bool {
	switch e.Periodicity {
	case PeriodicityMonthly, PeriodicityQuarterly, PeriodicityAnnual:
		return true
	}
	return false
}

// ScheduleIncludes reports whether the recurrence schedule covers the given
// month (any day of the month may be passed; only year/month are considered).
// MONTHLY covers every month from the start month on; QUARTERLY and ANNUAL
// cover months at 3- and 12-month intervals from the start month.
func (e *Expense) ScheduleIncludes(month time.Time) bool {
	if !e.IsRecurring() {
		return false
	}

	startIdx := e.StartDate.Year()*12 + int(e.StartDate.Month()) - 1
	monthIdx := month.Year()*12 + int(month.Month()) - 1
	elapsed := monthIdx - startIdx
	if elapsed < 0 {
		return false
	}

	switch e.Periodicity {
	case PeriodicityMonthly:
		return true
	case PeriodicityQuarterly:
		return elapsed%3 == 0
	case PeriodicityAnnual:
		return elapsed%12 == 0
	}
	return false
}

// MonthStart normalizes a date to the first day of its month in UTC. Validation
// months are always stored in this form.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
