package repository

import (
	"context"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/permission"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ExpenseFilter narrows an expense listing. All fields are optional; the
// caller-facing service validates them against scope before they get here.
type ExpenseFilter struct {
	CompanyID    *uuid.UUID
	DepartmentID *uuid.UUID
	CategoryID   *uuid.UUID
	Status       string
	Page         int
	Limit        int
}

type ExpenseRepository interface {
	Create(ctx context.Context, expense *model.Expense) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Expense, error)
	List(ctx context.Context, scope permission.ScopeParams, filter ExpenseFilter) ([]model.Expense, int64, error)
	ListActiveRecurring(ctx context.Context) ([]model.Expense, error)
	ListActiveRecurringScoped(ctx context.Context, scope permission.ScopeParams) ([]model.Expense, error)
	Update(ctx context.Context, expense *model.Expense) error
	NextCode(ctx context.Context, day time.Time) (string, error)
}

type expenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) Create(ctx context.Context, expense *model.Expense) error {
	return GetDB(ctx, r.db).Create(expense).Error
}

func (r *expenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	var expense model.Expense
	if err := GetDB(ctx, r.db).
		Preload("Company").Preload("Department").Preload("Category").Preload("Owner").
		First(&expense, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

// FindByIDForUpdate locks the expense row for the remainder of the enclosing
// transaction.
func (r *expenseRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	var expense model.Expense
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&expense, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *expenseRepository) List(ctx context.Context, scope permission.ScopeParams, filter ExpenseFilter) ([]model.Expense, int64, error) {
	var expenses []model.Expense
	var total int64

	db := GetDB(ctx, r.db)
	apply := func(q *gorm.DB) *gorm.DB {
		q = ApplyExpenseScope(q, scope)
		if filter.CompanyID != nil {
			q = q.Where("expenses.company_id = ?", *filter.CompanyID)
		}
		if filter.DepartmentID != nil {
			q = q.Where("expenses.department_id = ?", *filter.DepartmentID)
		}
		if filter.CategoryID != nil {
			q = q.Where("expenses.category_id = ?", *filter.CategoryID)
		}
		if filter.Status != "" {
			q = q.Where("expenses.status = ?", filter.Status)
		}
		return q
	}

	if err := apply(db.Model(&model.Expense{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := apply(db.Model(&model.Expense{})).
		Preload("Company").Preload("Department").Preload("Category").Preload("Owner").
		Order("expenses.created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&expenses).Error; err != nil {
		return nil, 0, err
	}

	return expenses, total, nil
}

// ListActiveRecurring returns every active expense with a recurring
// periodicity, unscoped. Used by the monthly batch routine, which runs with
// administrative authority.
func (r *expenseRepository) ListActiveRecurring(ctx context.Context) ([]model.Expense, error) {
	var expenses []model.Expense
	if err := GetDB(ctx, r.db).
		Where("status = ?", model.ExpenseStatusActive).
		Where("periodicity IN ?", []string{
			model.PeriodicityMonthly, model.PeriodicityQuarterly, model.PeriodicityAnnual,
		}).
		Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

// ListActiveRecurringScoped is the prediction variant: same selection limited
// to the requesting user's scope, with relations for the projection payload.
func (r *expenseRepository) ListActiveRecurringScoped(ctx context.Context, scope permission.ScopeParams) ([]model.Expense, error) {
	var expenses []model.Expense
	q := GetDB(ctx, r.db).Model(&model.Expense{}).
		Where("expenses.status = ?", model.ExpenseStatusActive).
		Where("expenses.periodicity IN ?", []string{
			model.PeriodicityMonthly, model.PeriodicityQuarterly, model.PeriodicityAnnual,
		})
	q = ApplyExpenseScope(q, scope)
	if err := q.
		Preload("Company").Preload("Department").Preload("Category").Preload("Owner").
		Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

func (r *expenseRepository) Update(ctx context.Context, expense *model.Expense) error {
	return GetDB(ctx, r.db).Save(expense).Error
}

// NextCode generates the next EXP-YYYYMMDD-NNNNN code for the given day. An
// advisory lock on the prefix serializes concurrent creators so two expenses
// can never draw the same sequence number.
func (r *expenseRepository) NextCode(ctx context.Context, day time.Time) (string, error) {
	prefix := "EXP-" + day.Format("20060102") + "-"

	db := GetDB(ctx, r.db)
	db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", prefix)

	var count int64
	if err := db.Model(&model.Expense{}).
		Where("code LIKE ?", prefix+"%").
		Count(&count).Error; err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}
