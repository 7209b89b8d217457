package model

import (
	"time"

	"github.com/google/uuid"
)

// AlertStatus enum constants
const (
	AlertPending = "PENDING"
	AlertRead    = "READ"
)

// AlertType enum constants
const (
	AlertTypeValidationOverdue = "VALIDATION_OVERDUE"
	AlertTypeValidationCreated = "VALIDATION_CREATED"
	AlertTypeExpenseAssigned   = "EXPENSE_ASSIGNED"
)

// Alert is an in-app notification addressed to a single user, usually the
// owner of an expense whose validation needs attention.
type Alert struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RecipientID uuid.UUID  `gorm:"type:uuid;not null;index" json:"recipient_id"`
	Recipient   *User      `gorm:"foreignKey:RecipientID" json:"-"`
	ExpenseID   *uuid.UUID `gorm:"type:uuid;index" json:"expense_id"`
	Expense     *Expense   `gorm:"foreignKey:ExpenseID" json:"expense,omitempty"`
	Type        string     `gorm:"type:varchar(30);not null" json:"type"`
	Message     string     `gorm:"type:text;not null" json:"message"`
	Status      string     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
