package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/permission"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- In-memory fakes ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type fakeExpenseRepo struct {
	expenses map[uuid.UUID]*model.Expense
}

func newFakeExpenseRepo() *fakeExpenseRepo {
	return &fakeExpenseRepo{expenses: make(map[uuid.UUID]*model.Expense)}
}

func (r *fakeExpenseRepo) add(e *model.Expense) *model.Expense {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.expenses[e.ID] = e
	return e
}

func (r *fakeExpenseRepo) Create(_ context.Context, e *model.Expense) error {
	r.add(e)
	return nil
}

func (r *fakeExpenseRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Expense, error) {
	e, ok := r.expenses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeExpenseRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	e, ok := r.expenses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (r *fakeExpenseRepo) List(_ context.Context, _ permission.ScopeParams, _ repository.ExpenseFilter) ([]model.Expense, int64, error) {
	return nil, 0, nil
}

func (r *fakeExpenseRepo) ListActiveRecurring(_ context.Context) ([]model.Expense, error) {
	var out []model.Expense
	for _, e := range r.expenses {
		if e.Status == model.ExpenseStatusActive && e.IsRecurring() {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeExpenseRepo) ListActiveRecurringScoped(ctx context.Context, scope permission.ScopeParams) ([]model.Expense, error) {
	all, _ := r.ListActiveRecurring(ctx)
	var out []model.Expense
	for _, e := range all {
		if !scope.Companies.Contains(e.CompanyID) {
			continue
		}
		if scope.CreatedByID != nil && (e.CreatedByID == nil || *e.CreatedByID != *scope.CreatedByID) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeExpenseRepo) Update(_ context.Context, e *model.Expense) error {
	r.expenses[e.ID] = e
	return nil
}

func (r *fakeExpenseRepo) NextCode(_ context.Context, day time.Time) (string, error) {
	return "EXP-" + day.Format("20060102") + "-00001", nil
}

type fakeValidationRepo struct {
	validations map[uuid.UUID]*model.ExpenseValidation
	expenses    *fakeExpenseRepo
	lastFlipped map[uuid.UUID]bool
}

func newFakeValidationRepo(expenses *fakeExpenseRepo) *fakeValidationRepo {
	return &fakeValidationRepo{
		validations: make(map[uuid.UUID]*model.ExpenseValidation),
		expenses:    expenses,
	}
}

func (r *fakeValidationRepo) add(v *model.ExpenseValidation) *model.ExpenseValidation {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	r.validations[v.ID] = v
	return v
}

func (r *fakeValidationRepo) CreateIfAbsent(_ context.Context, v *model.ExpenseValidation) (bool, error) {
	for _, existing := range r.validations {
		if existing.ExpenseID == v.ExpenseID && existing.ValidationMonth.Equal(v.ValidationMonth) {
			return false, nil
		}
	}
	r.add(v)
	return true, nil
}

func (r *fakeValidationRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ExpenseValidation, error) {
	v, ok := r.validations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *fakeValidationRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ExpenseValidation, error) {
	v, ok := r.validations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *fakeValidationRepo) Update(_ context.Context, v *model.ExpenseValidation) error {
	r.validations[v.ID] = v
	return nil
}

func (r *fakeValidationRepo) MarkOverdue(_ context.Context, cutoff time.Time) (int64, error) {
	r.lastFlipped = make(map[uuid.UUID]bool)
	var count int64
	for _, v := range r.validations {
		if v.Status == model.ValidationPending && !v.ValidationMonth.After(cutoff) {
			v.Status = model.ValidationOverdue
			v.IsOverdue = true
			v.UpdatedAt = time.Now()
			r.lastFlipped[v.ID] = true
			count++
		}
	}
	return count, nil
}

func (r *fakeValidationRepo) ListPending(_ context.Context, _ permission.ScopeParams, _ *time.Time) ([]model.ExpenseValidation, error) {
	var out []model.ExpenseValidation
	for _, v := range r.validations {
		if v.Status == model.ValidationPending || v.Status == model.ValidationOverdue {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *fakeValidationRepo) ListHistory(_ context.Context, _ permission.ScopeParams, filter repository.ValidationFilter) ([]model.ExpenseValidation, error) {
	var out []model.ExpenseValidation
	for _, v := range r.validations {
		if filter.Status != "" && v.Status != filter.Status {
			continue
		}
		if filter.Month != nil && !v.ValidationMonth.Equal(model.MonthStart(*filter.Month)) {
			continue
		}
		if filter.ExpenseID != nil && v.ExpenseID != *filter.ExpenseID {
			continue
		}
		out = append(out, *v)
	}
	return out, nil
}

func (r *fakeValidationRepo) ListOverdueUnnotified(_ context.Context, _ time.Time) ([]model.ExpenseValidation, error) {
	var out []model.ExpenseValidation
	for _, v := range r.validations {
		if v.Status == model.ValidationOverdue && r.lastFlipped[v.ID] {
			cp := *v
			if e, ok := r.expenses.expenses[v.ExpenseID]; ok {
				cp.Expense = e
			}
			out = append(out, cp)
		}
	}
	return out, nil
}

func (r *fakeValidationRepo) ExistingMonths(_ context.Context, month time.Time) (map[uuid.UUID]bool, error) {
	set := make(map[uuid.UUID]bool)
	for _, v := range r.validations {
		if v.ValidationMonth.Equal(model.MonthStart(month)) {
			set[v.ExpenseID] = true
		}
	}
	return set, nil
}

func (r *fakeValidationRepo) CountPendingScoped(_ context.Context, _ permission.ScopeParams, _ repository.ValidationFilter) (int64, error) {
	return 0, nil
}

type fakeAlertRepo struct {
	alerts []*model.Alert
}

func (r *fakeAlertRepo) Create(_ context.Context, a *model.Alert) error {
	a.ID = uuid.New()
	r.alerts = append(r.alerts, a)
	return nil
}

func (r *fakeAlertRepo) FindByID(_ context.Context, _ uuid.UUID) (*model.Alert, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAlertRepo) ListForRecipient(_ context.Context, _ uuid.UUID, _ bool, _, _ int) ([]model.Alert, int64, error) {
	return nil, 0, nil
}

func (r *fakeAlertRepo) CountUnread(_ context.Context, _ uuid.UUID, _ *uuid.UUID) (int64, error) {
	return 0, nil
}

func (r *fakeAlertRepo) Update(_ context.Context, _ *model.Alert) error { return nil }

type fakePublisher struct {
	events []string
}

func (p *fakePublisher) Publish(event string, _ interface{}) {
	p.events = append(p.events, event)
}

type fakeAuditRepo struct {
	entries []*model.AuditLog
}

func (r *fakeAuditRepo) Log(_ context.Context, e *model.AuditLog) error {
	r.entries = append(r.entries, e)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, _, _ int) ([]model.AuditLog, int64, error) {
	return nil, 0, nil
}

// --- Fixture ---

type lifecycleFixture struct {
	svc         *validationService
	expenses    *fakeExpenseRepo
	validations *fakeValidationRepo
	alerts      *fakeAlertRepo
	audits      *fakeAuditRepo
	events      *fakePublisher
	now         time.Time
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()
	expenses := newFakeExpenseRepo()
	f := &lifecycleFixture{
		expenses:    expenses,
		validations: newFakeValidationRepo(expenses),
		alerts:      &fakeAlertRepo{},
		audits:      &fakeAuditRepo{},
		events:      &fakePublisher{},
		now:         time.Date(2026, time.August, 28, 10, 0, 0, 0, time.UTC),
	}
	f.svc = &validationService{
		validationRepo: f.validations,
		expenseRepo:    f.expenses,
		alertRepo:      f.alerts,
		auditRepo:      f.audits,
		txManager:      fakeTxManager{},
		publisher:      f.events,
		now:            func() time.Time { return f.now },
	}
	return f
}

func (f *lifecycleFixture) activeMonthlyExpense(companyID, ownerID uuid.UUID) *model.Expense {
	return f.expenses.add(&model.Expense{
		Code:        "EXP-20260101-00001",
		ServiceName: "Hosting",
		CompanyID:   companyID,
		OwnerID:     ownerID,
		Status:      model.ExpenseStatusActive,
		Periodicity: model.PeriodicityMonthly,
		StartDate:   time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
}

func adminUser() *model.User {
	return &model.User{ID: uuid.New(), Role: model.RoleFinanceAdmin, IsActive: true}
}

// --- Tests ---

func TestCreateMonthlyValidationsIdempotent(t *testing.T) {
	f := newLifecycleFixture(t)
	companyID := uuid.New()
	f.activeMonthlyExpense(companyID, uuid.New())
	f.activeMonthlyExpense(companyID, uuid.New())
	month := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)

	first, err := f.svc.CreateMonthlyValidations(context.Background(), month)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("first run created %d validations, want 2", len(first))
	}

	second, err := f.svc.CreateMonthlyValidations(context.Background(), month)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("second run created %d validations, want 0", len(second))
	}
	if len(f.validations.validations) != 2 {
		t.Errorf("store holds %d validations, want 2", len(f.validations.validations))
	}
}

func TestCreateMonthlyValidationsSkipsCancelledAndOffSchedule(t *testing.T) {
	f := newLifecycleFixture(t)
	companyID := uuid.New()

	cancelled := f.activeMonthlyExpense(companyID, uuid.New())
	cancelled.Status = model.ExpenseStatusCancelled

	quarterly := f.activeMonthlyExpense(companyID, uuid.New())
	quarterly.Periodicity = model.PeriodicityQuarterly
	quarterly.StartDate = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	// August is 7 months after January: off the quarterly schedule.
	created, err := f.svc.CreateMonthlyValidations(context.Background(), time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("CreateMonthlyValidations: %v", err)
	}
	if len(created) != 0 {
		t.Errorf("created %d validations, want 0", len(created))
	}

	// October (9 months after January) is on the quarterly schedule.
	created, err = f.svc.CreateMonthlyValidations(context.Background(), time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("CreateMonthlyValidations: %v", err)
	}
	if len(created) != 1 || created[0].ExpenseID != quarterly.ID {
		t.Errorf("expected exactly the quarterly expense to be covered, got %d", len(created))
	}
}

func TestMarkOverdueBoundary(t *testing.T) {
	f := newLifecycleFixture(t)
	e := f.activeMonthlyExpense(uuid.New(), uuid.New())

	// Month started 5 days ago: past the 4-day grace.
	late := f.validations.add(&model.ExpenseValidation{
		ExpenseID:       e.ID,
		ValidationMonth: f.now.AddDate(0, 0, -5).Truncate(24 * time.Hour),
		Status:          model.ValidationPending,
	})
	// Month started 2 days ago: within the grace.
	fresh := f.validations.add(&model.ExpenseValidation{
		ExpenseID:       e.ID,
		ValidationMonth: f.now.AddDate(0, 0, -2).Truncate(24 * time.Hour),
		Status:          model.ValidationPending,
	})

	count, err := f.svc.MarkOverdue(context.Background())
	if err != nil {
		t.Fatalf("MarkOverdue: %v", err)
	}
	if count != 1 {
		t.Fatalf("marked %d validations, want 1", count)
	}
	if late.Status != model.ValidationOverdue || !late.IsOverdue {
		t.Error("5-day-old pending validation must be OVERDUE")
	}
	if fresh.Status != model.ValidationPending || fresh.IsOverdue {
		t.Error("2-day-old pending validation must stay PENDING")
	}
	if len(f.alerts.alerts) != 1 || f.alerts.alerts[0].RecipientID != e.OwnerID {
		t.Error("expected one overdue alert addressed to the expense owner")
	}

	// Re-run affects nothing new.
	count, err = f.svc.MarkOverdue(context.Background())
	if err != nil {
		t.Fatalf("second MarkOverdue: %v", err)
	}
	if count != 0 {
		t.Errorf("idempotent re-run marked %d validations, want 0", count)
	}
}

func TestApproveFromPendingAndOverdue(t *testing.T) {
	f := newLifecycleFixture(t)
	actor := adminUser()
	e := f.activeMonthlyExpense(uuid.New(), uuid.New())

	for _, status := range []string{model.ValidationPending, model.ValidationOverdue} {
		v := f.validations.add(&model.ExpenseValidation{
			ExpenseID:       e.ID,
			ValidationMonth: model.MonthStart(f.now),
			Status:          status,
		})

		got, err := f.svc.Approve(context.Background(), actor, v.ID)
		if err != nil {
			t.Fatalf("Approve from %s: %v", status, err)
		}
		if got.Status != model.ValidationApproved {
			t.Errorf("status = %s, want APPROVED", got.Status)
		}
		if got.ValidatorID == nil || *got.ValidatorID != actor.ID || got.ValidatedAt == nil {
			t.Error("approval must record validator and timestamp")
		}
		delete(f.validations.validations, v.ID)
	}
}

func TestResolveTerminalValidationFails(t *testing.T) {
	f := newLifecycleFixture(t)
	actor := adminUser()
	e := f.activeMonthlyExpense(uuid.New(), uuid.New())

	validator := uuid.New()
	when := f.now.Add(-time.Hour)
	for _, status := range []string{model.ValidationApproved, model.ValidationRejected} {
		v := f.validations.add(&model.ExpenseValidation{
			ExpenseID:       e.ID,
			ValidationMonth: model.MonthStart(f.now),
			Status:          status,
			ValidatorID:     &validator,
			ValidatedAt:     &when,
		})

		if _, err := f.svc.Approve(context.Background(), actor, v.ID); !errors.Is(err, apperr.ErrInvalidState) {
			t.Errorf("approve on %s: want ErrInvalidState, got %v", status, err)
		}
		if _, err := f.svc.Reject(context.Background(), actor, v.ID, false); !errors.Is(err, apperr.ErrInvalidState) {
			t.Errorf("reject on %s: want ErrInvalidState, got %v", status, err)
		}

		stored := f.validations.validations[v.ID]
		if stored.Status != status || *stored.ValidatorID != validator || !stored.ValidatedAt.Equal(when) {
			t.Errorf("terminal validation was modified by failed resolve: %+v", stored)
		}
		delete(f.validations.validations, v.ID)
	}
}

func TestRejectCancelsExpense(t *testing.T) {
	f := newLifecycleFixture(t)
	actor := adminUser()
	e := f.activeMonthlyExpense(uuid.New(), uuid.New())
	month := model.MonthStart(f.now)
	v := f.validations.add(&model.ExpenseValidation{
		ExpenseID:       e.ID,
		ValidationMonth: month,
		Status:          model.ValidationPending,
	})

	got, err := f.svc.Reject(context.Background(), actor, v.ID, true)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if got.Status != model.ValidationRejected || !got.ChargedThisMonth {
		t.Errorf("rejection not recorded correctly: %+v", got)
	}

	if e.Status != model.ExpenseStatusCancelled || e.CancelledAt == nil || e.CancelledByID == nil || *e.CancelledByID != actor.ID {
		t.Errorf("parent expense must be cancelled with metadata: %+v", e)
	}

	// Cancelled expense generates nothing for the following month.
	next := month.AddDate(0, 1, 0)
	created, err := f.svc.CreateMonthlyValidations(context.Background(), next)
	if err != nil {
		t.Fatalf("CreateMonthlyValidations: %v", err)
	}
	if len(created) != 0 {
		t.Errorf("cancelled expense produced %d validations for the next month", len(created))
	}
}

func TestResolvePublishesEvent(t *testing.T) {
	f := newLifecycleFixture(t)
	actor := adminUser()
	e := f.activeMonthlyExpense(uuid.New(), uuid.New())

	approved := f.validations.add(&model.ExpenseValidation{
		ExpenseID:       e.ID,
		ValidationMonth: model.MonthStart(f.now),
		Status:          model.ValidationPending,
	})
	if _, err := f.svc.Approve(context.Background(), actor, approved.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if len(f.events.events) != 1 || f.events.events[0] != "validations.resolved" {
		t.Fatalf("approval published %v, want one validations.resolved", f.events.events)
	}

	rejected := f.validations.add(&model.ExpenseValidation{
		ExpenseID:       e.ID,
		ValidationMonth: model.MonthStart(f.now).AddDate(0, -1, 0),
		Status:          model.ValidationOverdue,
	})
	if _, err := f.svc.Reject(context.Background(), actor, rejected.ID, false); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if len(f.events.events) != 2 || f.events.events[1] != "validations.resolved" {
		t.Fatalf("rejection published %v, want a second validations.resolved", f.events.events)
	}

	// A failed resolve publishes nothing.
	if _, err := f.svc.Approve(context.Background(), actor, approved.ID); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("re-approve: want ErrInvalidState, got %v", err)
	}
	if len(f.events.events) != 2 {
		t.Errorf("failed resolve published an event: %v", f.events.events)
	}
}

func TestRejectKeepsOriginalCancellation(t *testing.T) {
	f := newLifecycleFixture(t)
	actor := adminUser()
	e := f.activeMonthlyExpense(uuid.New(), uuid.New())
	v := f.validations.add(&model.ExpenseValidation{
		ExpenseID:       e.ID,
		ValidationMonth: model.MonthStart(f.now),
		Status:          model.ValidationPending,
	})

	// Cancelled out of band before its pending validation gets resolved.
	firstBy := uuid.New()
	firstAt := f.now.Add(-48 * time.Hour)
	e.Status = model.ExpenseStatusCancelled
	e.CancelledAt = &firstAt
	e.CancelledByID = &firstBy

	got, err := f.svc.Reject(context.Background(), actor, v.ID, false)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if got.Status != model.ValidationRejected {
		t.Errorf("status = %s, want REJECTED", got.Status)
	}
	if e.CancelledAt == nil || !e.CancelledAt.Equal(firstAt) || e.CancelledByID == nil || *e.CancelledByID != firstBy {
		t.Errorf("rejection overwrote the original cancellation record: %+v", e)
	}
}

func TestResolveRequiresApprovalPolicy(t *testing.T) {
	f := newLifecycleFixture(t)
	companyA := model.Company{ID: uuid.New(), Name: "A"}
	companyB := model.Company{ID: uuid.New(), Name: "B"}
	leader := &model.User{ID: uuid.New(), Role: model.RoleLeader, Companies: []model.Company{companyA}}

	// Owned by the leader but in a company outside their membership.
	e := f.activeMonthlyExpense(companyB.ID, leader.ID)
	v := f.validations.add(&model.ExpenseValidation{
		ExpenseID:       e.ID,
		ValidationMonth: model.MonthStart(f.now),
		Status:          model.ValidationPending,
	})

	if _, err := f.svc.Approve(context.Background(), leader, v.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("want ErrForbidden, got %v", err)
	}
	if v.Status != model.ValidationPending {
		t.Error("forbidden resolve must leave the validation untouched")
	}
}

func TestApproveUnknownValidation(t *testing.T) {
	f := newLifecycleFixture(t)
	if _, err := f.svc.Approve(context.Background(), adminUser(), uuid.New()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestPredictRejectsPastAndCurrentMonths(t *testing.T) {
	f := newLifecycleFixture(t)
	user := adminUser()

	for _, month := range []time.Time{
		model.MonthStart(f.now),                // current
		model.MonthStart(f.now).AddDate(0, -1, 0), // past
	} {
		if _, err := f.svc.Predict(context.Background(), user, month); !errors.Is(err, apperr.ErrInvalidState) {
			t.Errorf("Predict(%s): want ErrInvalidState, got %v", month.Format("2006-01"), err)
		}
	}
}

func TestPredictFutureMonth(t *testing.T) {
	f := newLifecycleFixture(t)
	user := adminUser()
	companyID := uuid.New()

	active := f.activeMonthlyExpense(companyID, uuid.New())
	cancelled := f.activeMonthlyExpense(companyID, uuid.New())
	cancelled.Status = model.ExpenseStatusCancelled
	alreadyCreated := f.activeMonthlyExpense(companyID, uuid.New())

	future := model.MonthStart(f.now).AddDate(0, 2, 0)
	f.validations.add(&model.ExpenseValidation{
		ExpenseID:       alreadyCreated.ID,
		ValidationMonth: future,
		Status:          model.ValidationPending,
	})

	before := len(f.validations.validations)
	predictions, err := f.svc.Predict(context.Background(), user, future)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}

	if len(predictions) != 1 || predictions[0].ExpenseID != active.ID {
		t.Fatalf("expected one projection for the active uncovered expense, got %d", len(predictions))
	}
	p := predictions[0]
	if !p.IsPredicted || p.Status != model.ValidationPending || !p.ValidationMonth.Equal(future) {
		t.Errorf("projection malformed: %+v", p)
	}

	// Read-only: no rows created.
	if len(f.validations.validations) != before {
		t.Error("prediction persisted records")
	}
	history, err := f.svc.GetHistory(context.Background(), user, repository.ValidationFilter{Month: &future})
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("history shows %d rows for the future month, want only the pre-existing one", len(history))
	}
}

func TestGetHistoryExpenseFilterOutsideScope(t *testing.T) {
	f := newLifecycleFixture(t)
	companyB := uuid.New()
	e := f.activeMonthlyExpense(companyB, uuid.New())

	leader := &model.User{ID: uuid.New(), Role: model.RoleLeader, Companies: []model.Company{{ID: uuid.New()}}}
	if _, err := f.svc.GetHistory(context.Background(), leader, repository.ValidationFilter{ExpenseID: &e.ID}); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("want ErrForbidden for out-of-scope expense filter, got %v", err)
	}

	unknown := uuid.New()
	if _, err := f.svc.GetHistory(context.Background(), leader, repository.ValidationFilter{ExpenseID: &unknown}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("want ErrNotFound for unknown expense filter, got %v", err)
	}
}
