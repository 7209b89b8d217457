package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/permission"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateExpenseRequest struct {
	ServiceName  string `json:"service_name" binding:"required"`
	Description  string `json:"description"`
	CategoryID   string `json:"category_id"`
	CompanyID    string `json:"company_id" binding:"required"`
	DepartmentID string `json:"department_id"`
	OwnerID      string `json:"owner_id" binding:"required"`

	Value        string `json:"value" binding:"required"`         // Decimal string
	Currency     string `json:"currency" binding:"required,oneof=BRL USD EUR"`
	ExchangeRate string `json:"exchange_rate"`                    // Decimal string, required unless BRL

	Periodicity string `json:"periodicity" binding:"required,oneof=MONTHLY QUARTERLY ANNUAL ONE_TIME"`
	StartDate   string `json:"start_date" binding:"required"` // YYYY-MM-DD
}

type ExpenseListFilter struct {
	CompanyID    *uuid.UUID
	DepartmentID *uuid.UUID
	CategoryID   *uuid.UUID
	Status       string
	Page         int
	Limit        int
}

// --- Interface ---

type ExpenseService interface {
	CreateExpense(ctx context.Context, actor *model.User, req CreateExpenseRequest) (*model.Expense, error)
	GetExpense(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Expense, error)
	ListExpenses(ctx context.Context, actor *model.User, filter ExpenseListFilter) ([]model.Expense, int64, error)
	CancelExpense(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Expense, error)
}

type expenseService struct {
	expenseRepo repository.ExpenseRepository
	alertRepo   repository.AlertRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	now         func() time.Time
}

func NewExpenseService(
	expenseRepo repository.ExpenseRepository,
	alertRepo repository.AlertRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) ExpenseService {
	return &expenseService{
		expenseRepo: expenseRepo,
		alertRepo:   alertRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		now:         time.Now,
	}
}

// --- Implementation ---

func (s *expenseService) CreateExpense(ctx context.Context, actor *model.User, req CreateExpenseRequest) (*model.Expense, error) {
	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("invalid company_id: %w", err)
	}
	if !permission.CanCreateInCompany(actor, companyID) {
		return nil, fmt.Errorf("cannot create expenses in company %s: %w", companyID, apperr.ErrForbidden)
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("invalid owner_id: %w", err)
	}

	value, err := decimal.NewFromString(req.Value)
	if err != nil {
		return nil, fmt.Errorf("invalid value: %w", err)
	}
	if value.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("value must be greater than 0")
	}

	// ---- Currency Conversion (base: BRL) ----
	exchangeRate := decimal.NewFromInt(1)
	if req.Currency != model.CurrencyBRL {
		if req.ExchangeRate == "" {
			return nil, fmt.Errorf("exchange_rate is required for currency %s", req.Currency)
		}
		exchangeRate, err = decimal.NewFromString(req.ExchangeRate)
		if err != nil {
			return nil, fmt.Errorf("invalid exchange_rate: %w", err)
		}
		if exchangeRate.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("exchange_rate must be greater than 0")
		}
	}
	valueBRL := value.Mul(exchangeRate)

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start_date: %w", err)
	}

	expense := &model.Expense{
		ServiceName:  req.ServiceName,
		Description:  req.Description,
		CompanyID:    companyID,
		OwnerID:      ownerID,
		CreatedByID:  &actor.ID,
		Value:        value,
		Currency:     req.Currency,
		ExchangeRate: exchangeRate,
		ValueBRL:     valueBRL,
		Periodicity:  req.Periodicity,
		StartDate:    startDate,
		Status:       model.ExpenseStatusActive,
	}

	if req.CategoryID != "" {
		parsed, parseErr := uuid.Parse(req.CategoryID)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid category_id: %w", parseErr)
		}
		expense.CategoryID = &parsed
	}
	if req.DepartmentID != "" {
		parsed, parseErr := uuid.Parse(req.DepartmentID)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid department_id: %w", parseErr)
		}
		expense.DepartmentID = &parsed
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		code, codeErr := s.expenseRepo.NextCode(txCtx, s.now())
		if codeErr != nil {
			return fmt.Errorf("failed to generate expense code: %w", codeErr)
		}
		expense.Code = code

		if createErr := s.expenseRepo.Create(txCtx, expense); createErr != nil {
			return fmt.Errorf("failed to create expense: %w", createErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"code":         expense.Code,
			"service_name": req.ServiceName,
			"company_id":   req.CompanyID,
			"value_brl":    valueBRL.StringFixed(4),
			"periodicity":  req.Periodicity,
		})
		audit := &model.AuditLog{
			UserID:     &actor.ID,
			Action:     model.ActionCreateExpense,
			EntityID:   expense.ID.String(),
			EntityName: expense.Code,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}

		// Let the responsible approver know an expense now points at them.
		if ownerID != actor.ID {
			alert := &model.Alert{
				RecipientID: ownerID,
				ExpenseID:   &expense.ID,
				Type:        model.AlertTypeExpenseAssigned,
				Message:     fmt.Sprintf("You are the owner of new expense %s (%s)", expense.ServiceName, expense.Code),
			}
			if alertErr := s.alertRepo.Create(txCtx, alert); alertErr != nil {
				return fmt.Errorf("failed to create assignment alert: %w", alertErr)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.expenseRepo.FindByID(ctx, expense.ID)
}

func (s *expenseService) GetExpense(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Expense, error) {
	expense, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("expense %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load expense: %w", err)
	}
	if !permission.CanView(actor, expense) {
		return nil, fmt.Errorf("no access to expense %s: %w", id, apperr.ErrForbidden)
	}
	return expense, nil
}

func (s *expenseService) ListExpenses(ctx context.Context, actor *model.User, filter ExpenseListFilter) ([]model.Expense, int64, error) {
	// An explicit company/department filter outside the caller's scope is a
	// ScopeViolation, never silently narrowed or appended.
	if err := permission.ValidateFilters(actor, filter.CompanyID, filter.DepartmentID); err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	scope := permission.ResolveScope(actor)
	expenses, total, err := s.expenseRepo.List(ctx, scope, repository.ExpenseFilter{
		CompanyID:    filter.CompanyID,
		DepartmentID: filter.DepartmentID,
		CategoryID:   filter.CategoryID,
		Status:       filter.Status,
		Page:         filter.Page,
		Limit:        filter.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, total, nil
}

// CancelExpense cancels an expense directly (outside the validation flow),
// e.g. when a subscription is terminated mid-cycle by an admin or its owner.
func (s *expenseService) CancelExpense(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Expense, error) {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		expense, err := s.expenseRepo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("expense %s: %w", id, apperr.ErrNotFound)
			}
			return fmt.Errorf("failed to lock expense: %w", err)
		}
		if !permission.CanApprove(actor, expense) {
			return fmt.Errorf("cannot cancel expense %s: %w", expense.Code, apperr.ErrForbidden)
		}
		if expense.IsCancelled() {
			return fmt.Errorf("expense is already cancelled: %w", apperr.ErrInvalidState)
		}

		now := s.now()
		expense.Status = model.ExpenseStatusCancelled
		expense.CancelledAt = &now
		expense.CancelledByID = &actor.ID
		if err := s.expenseRepo.Update(txCtx, expense); err != nil {
			return fmt.Errorf("failed to cancel expense: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{"code": expense.Code})
		audit := &model.AuditLog{
			UserID:     &actor.ID,
			Action:     model.ActionCancelExpense,
			EntityID:   expense.ID.String(),
			EntityName: expense.Code,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.expenseRepo.FindByID(ctx, id)
}
