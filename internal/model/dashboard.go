package model

import "time"

// DashboardStats aggregates the headline numbers for the current scope.
type DashboardStats struct {
	MonthTotalBRL      float64 `json:"month_total_brl"`
	ActiveExpenses     int64   `json:"active_expenses"`
	PendingValidations int64   `json:"pending_validations"`
	OverdueValidations int64   `json:"overdue_validations"`
	UnreadAlerts       int64   `json:"unread_alerts"`
	Month              string  `json:"month"` // YYYY-MM
}

// GroupTotal is one slice of an aggregation grouped by category, company or
// department.
type GroupTotal struct {
	GroupID   string  `json:"group_id"`
	GroupName string  `json:"group_name"`
	TotalBRL  float64 `json:"total_brl"`
	Count     int64   `json:"count"`
}

// StatusCount is one slice of the validation status distribution for a month.
type StatusCount struct {
	Status   string  `json:"status"`
	Count    int64   `json:"count"`
	TotalBRL float64 `json:"total_brl"`
}

// TimelinePoint is one month of the spending evolution series.
type TimelinePoint struct {
	Month    string  `json:"month"` // YYYY-MM
	TotalBRL float64 `json:"total_brl"`
	Count    int64   `json:"count"`
}

// TopExpense is one entry of the largest-expenses ranking.
type TopExpense struct {
	ExpenseID   string  `json:"expense_id"`
	Code        string  `json:"code"`
	ServiceName string  `json:"service_name"`
	CompanyName string  `json:"company_name"`
	ValueBRL    float64 `json:"value_brl"`
}

// UpcomingRenewal is a recurring expense whose next covered month falls inside
// the requested look-ahead window.
type UpcomingRenewal struct {
	ExpenseID   string    `json:"expense_id"`
	Code        string    `json:"code"`
	ServiceName string    `json:"service_name"`
	CompanyName string    `json:"company_name"`
	ValueBRL    float64   `json:"value_brl"`
	Periodicity string    `json:"periodicity"`
	RenewsAt    time.Time `json:"renews_at"`
}
