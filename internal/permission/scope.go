// Package permission holds the role-scoped access model: the scope resolver
// that restricts which expenses/validations a user can see, and the per-action
// policy predicates. Everything here is pure — no database access, no side
// effects — so every query path can apply the exact same rules.
package permission

import (
	"fmt"

	"backend/internal/apperr"
	"backend/internal/model"

	"github.com/google/uuid"
)

// IDFilter is one scope dimension. All=true means "no filter" (the ALL
// sentinel); All=false with an empty IDs slice matches nothing. The two are
// deliberately distinct so a leader with no company memberships fails closed
// instead of falling back to full visibility.
type IDFilter struct {
	All bool
	IDs []uuid.UUID
}

// AllIDs returns the unfiltered dimension.
func AllIDs() IDFilter { return IDFilter{All: true} }

// NoIDs returns the dimension that matches nothing.
func NoIDs() IDFilter { return IDFilter{} }

// SomeIDs restricts the dimension to the given ids.
func SomeIDs(ids []uuid.UUID) IDFilter { return IDFilter{IDs: ids} }

// Contains reports whether the filter admits the given id.
func (f IDFilter) Contains(id uuid.UUID) bool {
	if f.All {
		return true
	}
	for _, v := range f.IDs {
		if v == id {
			return true
		}
	}
	return false
}

// ScopeParams is the filter predicate restricting which expenses a user may
// see or act on. CreatedByID nil means no creator filter.
type ScopeParams struct {
	Companies   IDFilter
	Owners      IDFilter
	CreatedByID *uuid.UUID
	Departments IDFilter
}

// ResolveScope computes the scope for a user from role and company membership:
//
//	SYSTEM_ADMIN, FINANCE_ADMIN — every dimension unfiltered.
//	LEADER — companies limited to memberships (empty memberships yield an empty
//	  filter, not ALL); everything else unfiltered.
//	USER — may operate across companies but sees only self-created records and
//	  is never an approver target.
//	unknown/blank role — every set empty, creator pinned to the caller: the most
//	  restrictive reading. Never an error, never a permissive default.
func ResolveScope(user *model.User) ScopeParams {
	switch user.Role {
	case model.RoleSystemAdmin, model.RoleFinanceAdmin:
		return ScopeParams{
			Companies:   AllIDs(),
			Owners:      AllIDs(),
			Departments: AllIDs(),
		}

	case model.RoleLeader:
		return ScopeParams{
			Companies:   SomeIDs(user.CompanyIDs()),
			Owners:      AllIDs(),
			Departments: AllIDs(),
		}

	case model.RoleUser:
		createdBy := user.ID
		return ScopeParams{
			Companies:   AllIDs(),
			Owners:      NoIDs(),
			CreatedByID: &createdBy,
			Departments: AllIDs(),
		}
	}

	// Unknown or blank role: fail closed.
	createdBy := user.ID
	return ScopeParams{
		Companies:   NoIDs(),
		Owners:      NoIDs(),
		CreatedByID: &createdBy,
		Departments: NoIDs(),
	}
}

// ValidateFilters checks caller-supplied company/department query filters
// against the user's resolved scope. A narrower filter inside scope is fine; a
// filter pointing outside scope is a ScopeViolation, never silently dropped or
// widened.
func ValidateFilters(user *model.User, companyID, departmentID *uuid.UUID) error {
	scope := ResolveScope(user)

	if companyID != nil && !scope.Companies.Contains(*companyID) {
		return fmt.Errorf("company %s: %w", companyID, apperr.ErrScopeViolation)
	}
	if departmentID != nil && !scope.Departments.All {
		if !scope.Departments.Contains(*departmentID) {
			return fmt.Errorf("department %s: %w", departmentID, apperr.ErrScopeViolation)
		}
	}
	return nil
}
