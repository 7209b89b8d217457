package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"backend/internal/model"
	"backend/internal/permission"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DashboardFilter struct {
	CompanyID    *uuid.UUID
	DepartmentID *uuid.UUID
}

type DashboardService interface {
	GetStats(ctx context.Context, user *model.User, filter DashboardFilter) (model.DashboardStats, error)
	GetByCategory(ctx context.Context, user *model.User, filter DashboardFilter) ([]model.GroupTotal, error)
	GetByCompany(ctx context.Context, user *model.User, filter DashboardFilter) ([]model.GroupTotal, error)
	GetByDepartment(ctx context.Context, user *model.User, filter DashboardFilter) ([]model.GroupTotal, error)
	GetByStatus(ctx context.Context, user *model.User, filter DashboardFilter, month *time.Time) ([]model.StatusCount, error)
	GetTimeline(ctx context.Context, user *model.User, filter DashboardFilter, months int) ([]model.TimelinePoint, error)
	GetTopExpenses(ctx context.Context, user *model.User, filter DashboardFilter, limit int) ([]model.TopExpense, error)
	GetUpcomingRenewals(ctx context.Context, user *model.User, monthsAhead int) ([]model.UpcomingRenewal, error)
}

type dashboardService struct {
	db             *gorm.DB
	expenseRepo    repository.ExpenseRepository
	validationRepo repository.ValidationRepository
	alertRepo      repository.AlertRepository
	now            func() time.Time
}

func NewDashboardService(
	db *gorm.DB,
	expenseRepo repository.ExpenseRepository,
	validationRepo repository.ValidationRepository,
	alertRepo repository.AlertRepository,
) DashboardService {
	return &dashboardService{
		db:             db,
		expenseRepo:    expenseRepo,
		validationRepo: validationRepo,
		alertRepo:      alertRepo,
		now:            time.Now,
	}
}

// resolve validates the explicit filters against the caller's permissions
// before resolving the scope. A filter outside scope is a violation, never a
// silent narrowing.
func (s *dashboardService) resolve(user *model.User, filter DashboardFilter) (permission.ScopeParams, error) {
	if err := permission.ValidateFilters(user, filter.CompanyID, filter.DepartmentID); err != nil {
		return permission.ScopeParams{}, err
	}
	return permission.ResolveScope(user), nil
}

// scopedExpenses builds the base aggregation query: scope predicate plus the
// explicit dashboard filters, active expenses only.
func (s *dashboardService) scopedExpenses(ctx context.Context, scope permission.ScopeParams, filter DashboardFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Table("expenses").
		Where("expenses.cancelled_at IS NULL")
	q = repository.ApplyExpenseScope(q, scope)
	if filter.CompanyID != nil {
		q = q.Where("expenses.company_id = ?", *filter.CompanyID)
	}
	if filter.DepartmentID != nil {
		q = q.Where("expenses.department_id = ?", *filter.DepartmentID)
	}
	return q
}

// countsInMonthTotal decides whether one validation contributes to its month's
// total: every non-rejected validation counts, a REJECTED one only when the
// month was already charged. The SQL predicate in scopedMonthTotal mirrors
// this rule; keep the two in sync.
func countsInMonthTotal(status string, chargedThisMonth bool) bool {
	return status != model.ValidationRejected || chargedThisMonth
}

// scopedMonthTotal sums value_brl over the validations of one month, filtered
// per countsInMonthTotal, so a cancelled expense contributes its final month
// exactly once.
func (s *dashboardService) scopedMonthTotal(ctx context.Context, scope permission.ScopeParams, filter DashboardFilter, month time.Time) (float64, int64, error) {
	var row struct {
		Total float64
		Count int64
	}
	q := s.db.WithContext(ctx).Table("expense_validations").
		Select("COALESCE(SUM(expenses.value_brl), 0) as total, COUNT(*) as count").
		Joins("JOIN expenses ON expenses.id = expense_validations.expense_id").
		Where("expense_validations.validation_month = ?", model.MonthStart(month)).
		Where("expense_validations.status <> ? OR expense_validations.charged_this_month", model.ValidationRejected)
	q = repository.ApplyExpenseScope(q, scope)
	if filter.CompanyID != nil {
		q = q.Where("expenses.company_id = ?", *filter.CompanyID)
	}
	if filter.DepartmentID != nil {
		q = q.Where("expenses.department_id = ?", *filter.DepartmentID)
	}
	if err := q.Scan(&row).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate month total: %w", err)
	}
	return row.Total, row.Count, nil
}

func (s *dashboardService) GetStats(ctx context.Context, user *model.User, filter DashboardFilter) (model.DashboardStats, error) {
	scope, err := s.resolve(user, filter)
	if err != nil {
		return model.DashboardStats{}, err
	}

	month := model.MonthStart(s.now())
	stats := model.DashboardStats{Month: month.Format("2006-01")}

	stats.MonthTotalBRL, _, err = s.scopedMonthTotal(ctx, scope, filter, month)
	if err != nil {
		return model.DashboardStats{}, err
	}

	if err := s.scopedExpenses(ctx, scope, filter).Count(&stats.ActiveExpenses).Error; err != nil {
		return model.DashboardStats{}, fmt.Errorf("failed to count expenses: %w", err)
	}

	// Pending counters follow the approver's view: admins see every pending
	// validation in scope, leaders only the ones on expenses they own, plain
	// users none.
	vFilter := repository.ValidationFilter{}
	countPending := true
	switch user.Role {
	case model.RoleSystemAdmin, model.RoleFinanceAdmin:
	case model.RoleLeader:
		vFilter.OwnerID = &user.ID
	default:
		countPending = false
	}
	if countPending {
		stats.PendingValidations, err = s.validationRepo.CountPendingScoped(ctx, scope, vFilter)
		if err != nil {
			return model.DashboardStats{}, fmt.Errorf("failed to count pending validations: %w", err)
		}
		overdueFilter := vFilter
		overdueFilter.Status = model.ValidationOverdue
		stats.OverdueValidations, err = s.validationRepo.CountPendingScoped(ctx, scope, overdueFilter)
		if err != nil {
			return model.DashboardStats{}, fmt.Errorf("failed to count overdue validations: %w", err)
		}
	}

	stats.UnreadAlerts, err = s.alertRepo.CountUnread(ctx, user.ID, filter.CompanyID)
	if err != nil {
		return model.DashboardStats{}, fmt.Errorf("failed to count alerts: %w", err)
	}

	return stats, nil
}

func (s *dashboardService) GetByCategory(ctx context.Context, user *model.User, filter DashboardFilter) ([]model.GroupTotal, error) {
	scope, err := s.resolve(user, filter)
	if err != nil {
		return nil, err
	}

	var totals []model.GroupTotal
	err = s.scopedExpenses(ctx, scope, filter).
		Select("COALESCE(categories.id::text, '') as group_id, COALESCE(categories.name, 'Uncategorized') as group_name, SUM(expenses.value_brl) as total_brl, COUNT(*) as count").
		Joins("LEFT JOIN categories ON categories.id = expenses.category_id").
		Group("categories.id, categories.name").
		Order("total_brl DESC").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by category: %w", err)
	}
	return totals, nil
}

func (s *dashboardService) GetByCompany(ctx context.Context, user *model.User, filter DashboardFilter) ([]model.GroupTotal, error) {
	scope, err := s.resolve(user, filter)
	if err != nil {
		return nil, err
	}

	var totals []model.GroupTotal
	err = s.scopedExpenses(ctx, scope, filter).
		Select("companies.id::text as group_id, companies.name as group_name, SUM(expenses.value_brl) as total_brl, COUNT(*) as count").
		Joins("JOIN companies ON companies.id = expenses.company_id").
		Group("companies.id, companies.name").
		Order("total_brl DESC").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by company: %w", err)
	}
	return totals, nil
}

func (s *dashboardService) GetByDepartment(ctx context.Context, user *model.User, filter DashboardFilter) ([]model.GroupTotal, error) {
	scope, err := s.resolve(user, filter)
	if err != nil {
		return nil, err
	}

	var totals []model.GroupTotal
	err = s.scopedExpenses(ctx, scope, filter).
		Select("COALESCE(departments.id::text, '') as group_id, COALESCE(departments.name, 'Unassigned') as group_name, SUM(expenses.value_brl) as total_brl, COUNT(*) as count").
		Joins("LEFT JOIN departments ON departments.id = expenses.department_id").
		Group("departments.id, departments.name").
		Order("total_brl DESC").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by department: %w", err)
	}
	return totals, nil
}

// GetByStatus breaks one month's validations down by status, defaulting to the
// current month. All statuses appear here, REJECTED included, regardless of
// whether the month entered the totals.
func (s *dashboardService) GetByStatus(ctx context.Context, user *model.User, filter DashboardFilter, month *time.Time) ([]model.StatusCount, error) {
	scope, err := s.resolve(user, filter)
	if err != nil {
		return nil, err
	}

	target := model.MonthStart(s.now())
	if month != nil {
		target = model.MonthStart(*month)
	}

	var counts []model.StatusCount
	q := s.db.WithContext(ctx).Table("expense_validations").
		Select("expense_validations.status, COUNT(*) as count, COALESCE(SUM(expenses.value_brl), 0) as total_brl").
		Joins("JOIN expenses ON expenses.id = expense_validations.expense_id").
		Where("expense_validations.validation_month = ?", target)
	q = repository.ApplyExpenseScope(q, scope)
	if filter.CompanyID != nil {
		q = q.Where("expenses.company_id = ?", *filter.CompanyID)
	}
	if filter.DepartmentID != nil {
		q = q.Where("expenses.department_id = ?", *filter.DepartmentID)
	}
	err = q.Group("expense_validations.status").
		Order("count DESC").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by status: %w", err)
	}
	return counts, nil
}

func (s *dashboardService) GetTimeline(ctx context.Context, user *model.User, filter DashboardFilter, months int) ([]model.TimelinePoint, error) {
	scope, err := s.resolve(user, filter)
	if err != nil {
		return nil, err
	}
	if months <= 0 {
		months = 6
	}
	if months > 24 {
		months = 24
	}

	current := model.MonthStart(s.now())
	points := make([]model.TimelinePoint, 0, months)
	for i := months - 1; i >= 0; i-- {
		month := current.AddDate(0, -i, 0)
		total, count, err := s.scopedMonthTotal(ctx, scope, filter, month)
		if err != nil {
			return nil, err
		}
		points = append(points, model.TimelinePoint{
			Month:    month.Format("2006-01"),
			TotalBRL: total,
			Count:    count,
		})
	}
	return points, nil
}

func (s *dashboardService) GetTopExpenses(ctx context.Context, user *model.User, filter DashboardFilter, limit int) ([]model.TopExpense, error) {
	scope, err := s.resolve(user, filter)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	var top []model.TopExpense
	err = s.scopedExpenses(ctx, scope, filter).
		Select("expenses.id::text as expense_id, expenses.code, expenses.service_name, companies.name as company_name, expenses.value_brl").
		Joins("JOIN companies ON companies.id = expenses.company_id").
		Order("expenses.value_brl DESC").
		Limit(limit).
		Scan(&top).Error
	if err != nil {
		return nil, fmt.Errorf("failed to rank expenses: %w", err)
	}
	return top, nil
}

// GetUpcomingRenewals walks the scoped recurring expenses and projects each
// one's next covered month inside the look-ahead window. Schedules live in Go,
// not SQL, so this loads and filters in memory like prediction does.
func (s *dashboardService) GetUpcomingRenewals(ctx context.Context, user *model.User, monthsAhead int) ([]model.UpcomingRenewal, error) {
	if monthsAhead <= 0 {
		monthsAhead = 3
	}
	if monthsAhead > 12 {
		monthsAhead = 12
	}

	scope := permission.ResolveScope(user)
	expenses, err := s.expenseRepo.ListActiveRecurringScoped(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to load recurring expenses: %w", err)
	}

	current := model.MonthStart(s.now())
	renewals := make([]model.UpcomingRenewal, 0)
	for i := range expenses {
		e := &expenses[i]
		for offset := 1; offset <= monthsAhead; offset++ {
			month := current.AddDate(0, offset, 0)
			if !e.ScheduleIncludes(month) {
				continue
			}
			companyName := ""
			if e.Company != nil {
				companyName = e.Company.Name
			}
			renewals = append(renewals, model.UpcomingRenewal{
				ExpenseID:   e.ID.String(),
				Code:        e.Code,
				ServiceName: e.ServiceName,
				CompanyName: companyName,
				ValueBRL:    e.ValueBRL.InexactFloat64(),
				Periodicity: e.Periodicity,
				RenewsAt:    month,
			})
			break
		}
	}

	sort.Slice(renewals, func(i, j int) bool {
		if !renewals[i].RenewsAt.Equal(renewals[j].RenewsAt) {
			return renewals[i].RenewsAt.Before(renewals[j].RenewsAt)
		}
		return renewals[i].ValueBRL > renewals[j].ValueBRL
	})
	return renewals, nil
}
