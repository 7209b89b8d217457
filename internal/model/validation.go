package model

import (
	"time"

	"github.com/google/uuid"
)

// ValidationStatus enum constants. OVERDUE is a sub-state of PENDING: the
// validation is still resolvable, only flagged late by the sweep.
const (
	ValidationPending  = "PENDING"
	ValidationApproved = "APPROVED"
	ValidationRejected = "REJECTED"
	ValidationOverdue  = "OVERDUE"
)

// OverdueGraceDays is how many days into the target month a PENDING validation
// may sit before the sweep marks it OVERDUE.
const OverdueGraceDays = 4

// ExpenseValidation is the per-expense-per-month approval task for recurring
// charges. The composite unique index on (expense_id, validation_month) is the
// authoritative guard against duplicate creation under concurrent callers.
type ExpenseValidation struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ExpenseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_expense_validation_month" json:"expense_id"`
	Expense   *Expense  `gorm:"foreignKey:ExpenseID" json:"expense,omitempty"`

	// ValidationMonth is normalized to the first day of the month.
	ValidationMonth time.Time `gorm:"type:date;not null;uniqueIndex:uq_expense_validation_month" json:"validation_month"`

	Status      string     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	ValidatorID *uuid.UUID `gorm:"type:uuid" json:"validator_id"`
	Validator   *User      `gorm:"foreignKey:ValidatorID" json:"validator,omitempty"`
	ValidatedAt *time.Time `json:"validated_at"`
	IsOverdue   bool       `gorm:"default:false;not null" json:"is_overdue"`

	// ChargedThisMonth is set on rejection when the charge already happened in
	// the target month: the expense is cancelled going forward but this month's
	// value still counts once in dashboard totals.
	ChargedThisMonth bool `gorm:"default:false;not null" json:"charged_this_month"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Resolvable reports whether the validation can still be approved or rejected.
func (v *ExpenseValidation) Resolvable() bool {
	return v.Status == ValidationPending || v.Status == ValidationOverdue
}

// PredictedValidation is a read-only forecast of a future month's validation.
// It deliberately carries no identity so it can never be mistaken for (or
// persisted as) a real ExpenseValidation row.
type PredictedValidation struct {
	ExpenseID       uuid.UUID `json:"expense_id"`
	Expense         *Expense  `json:"expense,omitempty"`
	ValidationMonth time.Time `json:"validation_month"`
	Status          string    `json:"status"` // always PENDING
	IsPredicted     bool      `json:"is_predicted"`
}
