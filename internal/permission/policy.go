package permission

import (
	"backend/internal/model"

	"github.com/google/uuid"
)

// CanView reports whether the user may see the given expense (and, by
// extension, its validations). Admins see everything; a leader sees every
// expense of their companies; a plain user sees only what they created.
func CanView(user *model.User, expense *model.Expense) bool {
	switch user.Role {
	case model.RoleSystemAdmin, model.RoleFinanceAdmin:
		return true
	case model.RoleLeader:
		return user.BelongsToCompany(expense.CompanyID)
	case model.RoleUser:
		return expense.CreatedByID != nil && *expense.CreatedByID == user.ID
	}
	return false
}

// CanCreateInCompany reports whether the user may file an expense under the
// given company. A plain user may file under any company, naming someone else
// as owner; a leader only within their own companies.
func CanCreateInCompany(user *model.User, companyID uuid.UUID) bool {
	switch user.Role {
	case model.RoleSystemAdmin, model.RoleFinanceAdmin:
		return true
	case model.RoleLeader:
		return user.BelongsToCompany(companyID)
	case model.RoleUser:
		return true
	}
	return false
}

// CanApprove reports whether the user may approve or reject validations of the
// given expense. Narrower than CanView for leaders: they must both own the
// expense and belong to its company, so an ownership row left behind after a
// membership change still denies.
func CanApprove(user *model.User, expense *model.Expense) bool {
	switch user.Role {
	case model.RoleSystemAdmin, model.RoleFinanceAdmin:
		return true
	case model.RoleLeader:
		return expense.OwnerID == user.ID && user.BelongsToCompany(expense.CompanyID)
	}
	return false
}
