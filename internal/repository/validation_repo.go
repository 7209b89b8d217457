package repository

import (
	"context"
	"time"

	"backend/internal/model"
	"backend/internal/permission"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ValidationFilter narrows a validation listing. OwnerID is used by counters
// where the caller acts as approver, not by general visibility listings.
type ValidationFilter struct {
	Status    string
	Month     *time.Time // first day of the month
	ExpenseID *uuid.UUID
	OwnerID   *uuid.UUID
}

type ValidationRepository interface {
	// CreateIfAbsent inserts the validation unless one already exists for the
	// same (expense_id, validation_month). Returns whether a row was inserted.
	CreateIfAbsent(ctx context.Context, v *model.ExpenseValidation) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.ExpenseValidation, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ExpenseValidation, error)
	Update(ctx context.Context, v *model.ExpenseValidation) error
	// MarkOverdue flips PENDING validations whose month started at or before
	// the cutoff to OVERDUE, returning how many rows changed.
	MarkOverdue(ctx context.Context, cutoff time.Time) (int64, error)
	ListPending(ctx context.Context, scope permission.ScopeParams, month *time.Time) ([]model.ExpenseValidation, error)
	ListHistory(ctx context.Context, scope permission.ScopeParams, filter ValidationFilter) ([]model.ExpenseValidation, error)
	ListOverdueUnnotified(ctx context.Context, since time.Time) ([]model.ExpenseValidation, error)
	ExistingMonths(ctx context.Context, month time.Time) (map[uuid.UUID]bool, error)
	CountPendingScoped(ctx context.Context, scope permission.ScopeParams, filter ValidationFilter) (int64, error)
}

type validationRepository struct {
	db *gorm.DB
}

func NewValidationRepository(db *gorm.DB) ValidationRepository {
	return &validationRepository{db: db}
}

func (r *validationRepository) CreateIfAbsent(ctx context.Context, v *model.ExpenseValidation) (bool, error) {
	// The composite unique index is the authoritative guard; DoNothing makes a
	// concurrent duplicate a no-op instead of an error.
	res := GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "expense_id"}, {Name: "validation_month"}},
		DoNothing: true,
	}).Create(v)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *validationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ExpenseValidation, error) {
	var v model.ExpenseValidation
	if err := GetDB(ctx, r.db).
		Preload("Expense").Preload("Expense.Company").Preload("Expense.Department").
		Preload("Expense.Owner").Preload("Validator").
		First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// FindByIDForUpdate locks the validation row so concurrent approve/reject
// calls serialize; the loser re-reads a terminal status.
func (r *validationRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ExpenseValidation, error) {
	var v model.ExpenseValidation
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *validationRepository) Update(ctx context.Context, v *model.ExpenseValidation) error {
	return GetDB(ctx, r.db).Save(v).Error
}

func (r *validationRepository) MarkOverdue(ctx context.Context, cutoff time.Time) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.ExpenseValidation{}).
		Where("status = ?", model.ValidationPending).
		Where("validation_month <= ?", cutoff).
		Updates(map[string]interface{}{
			"status":     model.ValidationOverdue,
			"is_overdue": true,
		})
	return res.RowsAffected, res.Error
}

func (r *validationRepository) ListPending(ctx context.Context, scope permission.ScopeParams, month *time.Time) ([]model.ExpenseValidation, error) {
	var validations []model.ExpenseValidation
	q := GetDB(ctx, r.db).Model(&model.ExpenseValidation{}).
		Joins("JOIN expenses ON expenses.id = expense_validations.expense_id").
		Where("expense_validations.status IN ?", []string{model.ValidationPending, model.ValidationOverdue})
	q = ApplyExpenseScope(q, scope)
	if month != nil {
		q = q.Where("expense_validations.validation_month = ?", model.MonthStart(*month))
	}
	if err := q.
		Preload("Expense").Preload("Expense.Company").Preload("Expense.Department").
		Preload("Expense.Category").Preload("Expense.Owner").
		Order("expense_validations.validation_month DESC, expense_validations.created_at DESC").
		Find(&validations).Error; err != nil {
		return nil, err
	}
	return validations, nil
}

func (r *validationRepository) ListHistory(ctx context.Context, scope permission.ScopeParams, filter ValidationFilter) ([]model.ExpenseValidation, error) {
	var validations []model.ExpenseValidation
	q := GetDB(ctx, r.db).Model(&model.ExpenseValidation{}).
		Joins("JOIN expenses ON expenses.id = expense_validations.expense_id")
	q = ApplyExpenseScope(q, scope)
	if filter.Status != "" {
		q = q.Where("expense_validations.status = ?", filter.Status)
	}
	if filter.Month != nil {
		q = q.Where("expense_validations.validation_month = ?", model.MonthStart(*filter.Month))
	}
	if filter.ExpenseID != nil {
		q = q.Where("expense_validations.expense_id = ?", *filter.ExpenseID)
	}
	if err := q.
		Preload("Expense").Preload("Expense.Company").Preload("Expense.Department").
		Preload("Expense.Category").Preload("Expense.Owner").Preload("Validator").
		Order("expense_validations.validation_month DESC, expense_validations.created_at DESC").
		Find(&validations).Error; err != nil {
		return nil, err
	}
	return validations, nil
}

// ListOverdueUnnotified returns overdue validations updated since the given
// instant, with owners loaded, so the sweep can fan out alerts for exactly the
// rows it just flipped.
func (r *validationRepository) ListOverdueUnnotified(ctx context.Context, since time.Time) ([]model.ExpenseValidation, error) {
	var validations []model.ExpenseValidation
	if err := GetDB(ctx, r.db).
		Where("status = ? AND updated_at >= ?", model.ValidationOverdue, since).
		Preload("Expense").Preload("Expense.Owner").
		Find(&validations).Error; err != nil {
		return nil, err
	}
	return validations, nil
}

// ExistingMonths returns the set of expense ids that already have a validation
// for the given month. Used by prediction, which must not create rows.
func (r *validationRepository) ExistingMonths(ctx context.Context, month time.Time) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	if err := GetDB(ctx, r.db).Model(&model.ExpenseValidation{}).
		Where("validation_month = ?", model.MonthStart(month)).
		Pluck("expense_id", &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// CountPendingScoped backs the dashboard counters. Callers narrow by OwnerID
// when only validations the user can personally resolve should count, and by
// Status for a single-status count; the default counts PENDING plus OVERDUE.
func (r *validationRepository) CountPendingScoped(ctx context.Context, scope permission.ScopeParams, filter ValidationFilter) (int64, error) {
	var total int64
	q := GetDB(ctx, r.db).Model(&model.ExpenseValidation{}).
		Joins("JOIN expenses ON expenses.id = expense_validations.expense_id")
	if filter.Status != "" {
		q = q.Where("expense_validations.status = ?", filter.Status)
	} else {
		q = q.Where("expense_validations.status IN ?", []string{model.ValidationPending, model.ValidationOverdue})
	}
	q = ApplyExpenseScope(q, scope)
	if filter.OwnerID != nil {
		q = q.Where("expenses.owner_id = ?", *filter.OwnerID)
	}
	if filter.Month != nil {
		q = q.Where("expense_validations.validation_month = ?", model.MonthStart(*filter.Month))
	}
	if filter.ExpenseID != nil {
		q = q.Where("expense_validations.expense_id = ?", *filter.ExpenseID)
	}
	err := q.Count(&total).Error
	return total, err
}
