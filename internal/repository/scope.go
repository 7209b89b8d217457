package repository

import (
	"backend/internal/permission"

	"gorm.io/gorm"
)

// ApplyExpenseScope composes the resolved scope's visibility dimensions
// (company, creator, department) into WHERE clauses against the expenses
// table. Every listing/aggregation path (expense list, validation list,
// dashboard) must go through this one function so the predicate can never
// drift between them. Queries joining other tables must qualify the expenses
// columns exactly as written here. The owner dimension is not a visibility
// filter; approver-targeted queries narrow by owner explicitly.
func ApplyExpenseScope(q *gorm.DB, scope permission.ScopeParams) *gorm.DB {
	if !scope.Companies.All {
		if len(scope.Companies.IDs) == 0 {
			// Empty set is a real filter: matches nothing. Distinct from ALL.
			return q.Where("1 = 0")
		}
		q = q.Where("expenses.company_id IN ?", scope.Companies.IDs)
	}

	if scope.CreatedByID != nil {
		q = q.Where("expenses.created_by_id = ?", *scope.CreatedByID)
	}

	if !scope.Departments.All {
		if len(scope.Departments.IDs) == 0 {
			return q.Where("1 = 0")
		}
		q = q.Where("expenses.department_id IN ?", scope.Departments.IDs)
	}

	return q
}
