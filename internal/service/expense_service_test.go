package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"backend/internal/apperr"
	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type expenseFixture struct {
	svc      *expenseService
	expenses *fakeExpenseRepo
	alerts   *fakeAlertRepo
	audits   *fakeAuditRepo
	now      time.Time
}

func newExpenseFixture(t *testing.T) *expenseFixture {
	t.Helper()
	f := &expenseFixture{
		expenses: newFakeExpenseRepo(),
		alerts:   &fakeAlertRepo{},
		audits:   &fakeAuditRepo{},
		now:      time.Date(2026, time.August, 28, 10, 0, 0, 0, time.UTC),
	}
	f.svc = &expenseService{
		expenseRepo: f.expenses,
		alertRepo:   f.alerts,
		auditRepo:   f.audits,
		txManager:   fakeTxManager{},
		now:         func() time.Time { return f.now },
	}
	return f
}

func validCreateRequest(companyID, ownerID uuid.UUID) CreateExpenseRequest {
	return CreateExpenseRequest{
		ServiceName: "Cloud Hosting",
		CompanyID:   companyID.String(),
		OwnerID:     ownerID.String(),
		Value:       "1200.50",
		Currency:    model.CurrencyBRL,
		Periodicity: model.PeriodicityMonthly,
		StartDate:   "2026-08-01",
	}
}

func TestCreateExpenseConvertsToBRL(t *testing.T) {
	f := newExpenseFixture(t)
	actor := adminUser()
	ownerID := uuid.New()

	req := validCreateRequest(uuid.New(), ownerID)
	req.Currency = model.CurrencyUSD
	req.Value = "100"
	req.ExchangeRate = "5.25"

	expense, err := f.svc.CreateExpense(context.Background(), actor, req)
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	if !expense.ValueBRL.Equal(decimal.RequireFromString("525")) {
		t.Errorf("value_brl = %s, want 525", expense.ValueBRL)
	}
	if expense.Code != "EXP-20260828-00001" {
		t.Errorf("code = %s", expense.Code)
	}
	if expense.CreatedByID == nil || *expense.CreatedByID != actor.ID {
		t.Error("creator must be recorded")
	}

	// An assignment alert goes to the owner, and the creation is audited.
	if len(f.alerts.alerts) != 1 || f.alerts.alerts[0].RecipientID != ownerID {
		t.Error("expected one assignment alert for the owner")
	}
	if len(f.audits.entries) != 1 || f.audits.entries[0].Action != model.ActionCreateExpense {
		t.Error("expected one CREATE_EXPENSE audit entry")
	}
}

func TestCreateExpenseRequiresExchangeRate(t *testing.T) {
	f := newExpenseFixture(t)
	req := validCreateRequest(uuid.New(), uuid.New())
	req.Currency = model.CurrencyEUR
	req.ExchangeRate = ""

	if _, err := f.svc.CreateExpense(context.Background(), adminUser(), req); err == nil {
		t.Error("foreign currency without exchange_rate must fail")
	}
}

func TestCreateExpenseForbiddenOutsideScope(t *testing.T) {
	f := newExpenseFixture(t)
	memberCompany := model.Company{ID: uuid.New(), Name: "A"}
	leader := &model.User{ID: uuid.New(), Role: model.RoleLeader, Companies: []model.Company{memberCompany}}

	req := validCreateRequest(uuid.New(), uuid.New()) // company outside membership
	if _, err := f.svc.CreateExpense(context.Background(), leader, req); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("want ErrForbidden, got %v", err)
	}
	if len(f.expenses.expenses) != 0 {
		t.Error("forbidden create must not persist anything")
	}

	// Same request inside the membership succeeds.
	req = validCreateRequest(memberCompany.ID, uuid.New())
	if _, err := f.svc.CreateExpense(context.Background(), leader, req); err != nil {
		t.Errorf("in-scope create failed: %v", err)
	}
}

func TestCancelExpense(t *testing.T) {
	f := newExpenseFixture(t)
	actor := adminUser()
	e := f.expenses.add(&model.Expense{
		Code:        "EXP-20260801-00001",
		ServiceName: "Hosting",
		CompanyID:   uuid.New(),
		OwnerID:     uuid.New(),
		Status:      model.ExpenseStatusActive,
		Periodicity: model.PeriodicityMonthly,
		StartDate:   time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	})

	got, err := f.svc.CancelExpense(context.Background(), actor, e.ID)
	if err != nil {
		t.Fatalf("CancelExpense: %v", err)
	}
	if got.Status != model.ExpenseStatusCancelled || got.CancelledAt == nil || *got.CancelledByID != actor.ID {
		t.Errorf("cancellation metadata missing: %+v", got)
	}

	if _, err := f.svc.CancelExpense(context.Background(), actor, e.ID); !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("second cancel: want ErrInvalidState, got %v", err)
	}
}

func TestListExpensesRejectsOutOfScopeFilter(t *testing.T) {
	f := newExpenseFixture(t)
	leader := &model.User{ID: uuid.New(), Role: model.RoleLeader, Companies: []model.Company{{ID: uuid.New()}}}

	foreign := uuid.New()
	_, _, err := f.svc.ListExpenses(context.Background(), leader, ExpenseListFilter{CompanyID: &foreign})
	if !errors.Is(err, apperr.ErrScopeViolation) {
		t.Errorf("want ErrScopeViolation, got %v", err)
	}
}
