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
	"gorm.io/gorm"
)

// EventPublisher pushes lifecycle events to connected dashboard clients.
type EventPublisher interface {
	Publish(event string, payload interface{})
}

// ValidationService is the state machine governing one validation record per
// (expense, month): monthly creation, the pending→overdue sweep, approve and
// reject resolution, and read-only look-ahead prediction.
type ValidationService interface {
	CreateMonthlyValidations(ctx context.Context, month time.Time) ([]model.ExpenseValidation, error)
	MarkOverdue(ctx context.Context) (int64, error)
	Approve(ctx context.Context, actor *model.User, id uuid.UUID) (*model.ExpenseValidation, error)
	Reject(ctx context.Context, actor *model.User, id uuid.UUID, chargedThisMonth bool) (*model.ExpenseValidation, error)
	Predict(ctx context.Context, user *model.User, month time.Time) ([]model.PredictedValidation, error)
	GetByID(ctx context.Context, user *model.User, id uuid.UUID) (*model.ExpenseValidation, error)
	GetPending(ctx context.Context, user *model.User, month *time.Time) ([]model.ExpenseValidation, error)
	GetHistory(ctx context.Context, user *model.User, filter repository.ValidationFilter) ([]model.ExpenseValidation, error)
}

type validationService struct {
	validationRepo repository.ValidationRepository
	expenseRepo    repository.ExpenseRepository
	alertRepo      repository.AlertRepository
	auditRepo      repository.AuditRepository
	txManager      repository.TransactionManager
	publisher      EventPublisher
	now            func() time.Time
}

func NewValidationService(
	validationRepo repository.ValidationRepository,
	expenseRepo repository.ExpenseRepository,
	alertRepo repository.AlertRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	publisher EventPublisher,
) ValidationService {
	return &validationService{
		validationRepo: validationRepo,
		expenseRepo:    expenseRepo,
		alertRepo:      alertRepo,
		auditRepo:      auditRepo,
		txManager:      txManager,
		publisher:      publisher,
		now:            time.Now,
	}
}

// CreateMonthlyValidations creates one PENDING validation per active recurring
// expense whose schedule covers the target month. Idempotent: the unique index
// on (expense_id, validation_month) makes re-runs and concurrent invocations
// skip existing pairs instead of duplicating or failing.
func (s *validationService) CreateMonthlyValidations(ctx context.Context, month time.Time) ([]model.ExpenseValidation, error) {
	target := model.MonthStart(month)

	var created []model.ExpenseValidation
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		expenses, err := s.expenseRepo.ListActiveRecurring(txCtx)
		if err != nil {
			return fmt.Errorf("failed to list recurring expenses: %w", err)
		}

		for i := range expenses {
			e := &expenses[i]
			if !e.ScheduleIncludes(target) {
				continue
			}

			v := model.ExpenseValidation{
				ExpenseID:       e.ID,
				ValidationMonth: target,
				Status:          model.ValidationPending,
			}
			inserted, err := s.validationRepo.CreateIfAbsent(txCtx, &v)
			if err != nil {
				return fmt.Errorf("failed to create validation for expense %s: %w", e.Code, err)
			}
			if inserted {
				created = append(created, v)
			}
		}

		details, _ := json.Marshal(map[string]interface{}{
			"month":   target.Format("2006-01"),
			"created": len(created),
		})
		audit := &model.AuditLog{
			Action:     model.ActionCreateMonthlyValidations,
			EntityID:   target.Format("2006-01"),
			EntityName: "monthly validations",
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

	if s.publisher != nil && len(created) > 0 {
		s.publisher.Publish("validations.created", map[string]interface{}{
			"month": target.Format("2006-01"),
			"count": len(created),
		})
	}

	return created, nil
}

// MarkOverdue flips PENDING validations to OVERDUE once the grace period has
// elapsed since the start of their target month, and alerts each expense
// owner. Re-running only touches newly eligible records; nothing to do is
// still success.
func (s *validationService) MarkOverdue(ctx context.Context) (int64, error) {
	cutoff := s.now().AddDate(0, 0, -model.OverdueGraceDays)

	var count int64
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		sweepStart := s.now()

		var err error
		count, err = s.validationRepo.MarkOverdue(txCtx, cutoff)
		if err != nil {
			return fmt.Errorf("failed to mark overdue validations: %w", err)
		}
		if count == 0 {
			return nil
		}

		flipped, err := s.validationRepo.ListOverdueUnnotified(txCtx, sweepStart)
		if err != nil {
			return fmt.Errorf("failed to load overdue validations: %w", err)
		}
		for i := range flipped {
			v := &flipped[i]
			if v.Expense == nil {
				continue
			}
			alert := &model.Alert{
				RecipientID: v.Expense.OwnerID,
				ExpenseID:   &v.ExpenseID,
				Type:        model.AlertTypeValidationOverdue,
				Message: fmt.Sprintf("Validation for %s (%s) is overdue for %s",
					v.Expense.ServiceName, v.Expense.Code, v.ValidationMonth.Format("2006-01")),
			}
			if err := s.alertRepo.Create(txCtx, alert); err != nil {
				return fmt.Errorf("failed to create overdue alert: %w", err)
			}
		}

		details, _ := json.Marshal(map[string]interface{}{"count": count})
		audit := &model.AuditLog{
			Action:     model.ActionMarkOverdue,
			EntityName: "overdue sweep",
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	if s.publisher != nil && count > 0 {
		s.publisher.Publish("validations.overdue", map[string]interface{}{"count": count})
	}

	return count, nil
}

// Approve resolves a PENDING/OVERDUE validation. The row lock serializes
// concurrent resolutions: the second caller re-reads a terminal status and
// gets an invalid-state error instead of overwriting validator fields.
func (s *validationService) Approve(ctx context.Context, actor *model.User, id uuid.UUID) (*model.ExpenseValidation, error) {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		v, err := s.lockResolvable(txCtx, actor, id)
		if err != nil {
			return err
		}

		now := s.now()
		v.Status = model.ValidationApproved
		v.ValidatorID = &actor.ID
		v.ValidatedAt = &now
		if err := s.validationRepo.Update(txCtx, v); err != nil {
			return fmt.Errorf("failed to update validation: %w", err)
		}

		return s.auditResolution(txCtx, model.ActionApproveValidation, actor, v, nil)
	})
	if err != nil {
		return nil, err
	}

	v, err := s.validationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publishResolved(v)
	return v, nil
}

// Reject resolves a PENDING/OVERDUE validation negatively and cancels the
// parent expense in the same transaction, so it generates no further monthly
// validations. chargedThisMonth records that the rejected month's charge
// already happened: the expense is cancelled going forward but that month's
// value still counts once in dashboard totals.
func (s *validationService) Reject(ctx context.Context, actor *model.User, id uuid.UUID, chargedThisMonth bool) (*model.ExpenseValidation, error) {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		v, err := s.lockResolvable(txCtx, actor, id)
		if err != nil {
			return err
		}

		now := s.now()
		v.Status = model.ValidationRejected
		v.ValidatorID = &actor.ID
		v.ValidatedAt = &now
		v.ChargedThisMonth = chargedThisMonth
		if err := s.validationRepo.Update(txCtx, v); err != nil {
			return fmt.Errorf("failed to update validation: %w", err)
		}

		expense, err := s.expenseRepo.FindByIDForUpdate(txCtx, v.ExpenseID)
		if err != nil {
			return fmt.Errorf("failed to lock expense %s: %w", v.ExpenseID, err)
		}
		// An already-cancelled expense keeps its original cancellation record.
		if !expense.IsCancelled() {
			expense.Status = model.ExpenseStatusCancelled
			expense.CancelledAt = &now
			expense.CancelledByID = &actor.ID
			if err := s.expenseRepo.Update(txCtx, expense); err != nil {
				return fmt.Errorf("failed to cancel expense: %w", err)
			}
		}

		extra := map[string]interface{}{"charged_this_month": chargedThisMonth}
		return s.auditResolution(txCtx, model.ActionRejectValidation, actor, v, extra)
	})
	if err != nil {
		return nil, err
	}

	v, err := s.validationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publishResolved(v)
	return v, nil
}

// publishResolved notifies connected clients after a resolution commits.
func (s *validationService) publishResolved(v *model.ExpenseValidation) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish("validations.resolved", map[string]interface{}{
		"id":         v.ID.String(),
		"expense_id": v.ExpenseID.String(),
		"month":      v.ValidationMonth.Format("2006-01"),
		"status":     v.Status,
	})
}

// lockResolvable loads the validation under a row lock and runs the policy and
// state guards shared by Approve and Reject.
func (s *validationService) lockResolvable(txCtx context.Context, actor *model.User, id uuid.UUID) (*model.ExpenseValidation, error) {
	v, err := s.validationRepo.FindByIDForUpdate(txCtx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("validation %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load validation: %w", err)
	}

	expense, err := s.expenseRepo.FindByID(txCtx, v.ExpenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load expense %s: %w", v.ExpenseID, err)
	}
	if !permission.CanApprove(actor, expense) {
		return nil, fmt.Errorf("cannot resolve validations of expense %s: %w", expense.Code, apperr.ErrForbidden)
	}

	if !v.Resolvable() {
		return nil, fmt.Errorf("validation is already %s: %w", v.Status, apperr.ErrInvalidState)
	}
	return v, nil
}

func (s *validationService) auditResolution(txCtx context.Context, action string, actor *model.User, v *model.ExpenseValidation, extra map[string]interface{}) error {
	payload := map[string]interface{}{
		"expense_id": v.ExpenseID.String(),
		"month":      v.ValidationMonth.Format("2006-01"),
		"status":     v.Status,
	}
	for k, val := range extra {
		payload[k] = val
	}
	details, _ := json.Marshal(payload)
	audit := &model.AuditLog{
		UserID:   &actor.ID,
		Action:   action,
		EntityID: v.ID.String(),
		Details:  string(details),
	}
	if err := s.auditRepo.Log(txCtx, audit); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// Predict synthesizes the validations a strictly future month would receive,
// without creating records: active recurring expenses in the user's scope
// whose schedule covers the month and which have no row for it yet. Cancelled
// expenses never appear, even if they were recurring while active.
func (s *validationService) Predict(ctx context.Context, user *model.User, month time.Time) ([]model.PredictedValidation, error) {
	target := model.MonthStart(month)
	current := model.MonthStart(s.now())
	if !target.After(current) {
		return nil, fmt.Errorf("prediction is only for future months, use pending/history for %s: %w",
			target.Format("2006-01"), apperr.ErrInvalidState)
	}

	scope := permission.ResolveScope(user)
	expenses, err := s.expenseRepo.ListActiveRecurringScoped(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring expenses: %w", err)
	}

	existing, err := s.validationRepo.ExistingMonths(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing validations: %w", err)
	}

	predictions := make([]model.PredictedValidation, 0, len(expenses))
	for i := range expenses {
		e := &expenses[i]
		if existing[e.ID] || !e.ScheduleIncludes(target) {
			continue
		}
		predictions = append(predictions, model.PredictedValidation{
			ExpenseID:       e.ID,
			Expense:         e,
			ValidationMonth: target,
			Status:          model.ValidationPending,
			IsPredicted:     true,
		})
	}

	return predictions, nil
}

// GetByID returns one validation if its parent expense is visible to the user.
func (s *validationService) GetByID(ctx context.Context, user *model.User, id uuid.UUID) (*model.ExpenseValidation, error) {
	v, err := s.validationRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("validation %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load validation: %w", err)
	}
	if v.Expense == nil || !permission.CanView(user, v.Expense) {
		return nil, fmt.Errorf("no access to validation %s: %w", id, apperr.ErrForbidden)
	}
	return v, nil
}

// GetPending lists unresolved (PENDING/OVERDUE) validations within the user's
// scope, optionally limited to one month.
func (s *validationService) GetPending(ctx context.Context, user *model.User, month *time.Time) ([]model.ExpenseValidation, error) {
	scope := permission.ResolveScope(user)
	validations, err := s.validationRepo.ListPending(ctx, scope, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending validations: %w", err)
	}
	return validations, nil
}

// GetHistory lists validations within the user's scope with optional status,
// month and expense filters. An explicit expense filter outside the user's
// visibility is a Forbidden error, not an empty result.
func (s *validationService) GetHistory(ctx context.Context, user *model.User, filter repository.ValidationFilter) ([]model.ExpenseValidation, error) {
	if filter.ExpenseID != nil {
		expense, err := s.expenseRepo.FindByID(ctx, *filter.ExpenseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("expense %s: %w", filter.ExpenseID, apperr.ErrNotFound)
			}
			return nil, fmt.Errorf("failed to load expense: %w", err)
		}
		if !permission.CanView(user, expense) {
			return nil, fmt.Errorf("no access to expense %s: %w", filter.ExpenseID, apperr.ErrForbidden)
		}
	}

	scope := permission.ResolveScope(user)
	validations, err := s.validationRepo.ListHistory(ctx, scope, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list validation history: %w", err)
	}
	return validations, nil
}
