package permission

import (
	"errors"
	"testing"

	"backend/internal/apperr"
	"backend/internal/model"

	"github.com/google/uuid"
)

func userWithRole(role string, companies ...model.Company) *model.User {
	return &model.User{
		ID:        uuid.New(),
		Role:      role,
		IsActive:  true,
		Companies: companies,
	}
}

func TestResolveScopeAdminsSeeEverything(t *testing.T) {
	for _, role := range []string{model.RoleSystemAdmin, model.RoleFinanceAdmin} {
		scope := ResolveScope(userWithRole(role))
		if !scope.Companies.All || !scope.Owners.All || !scope.Departments.All {
			t.Errorf("role %s: expected all dimensions unfiltered, got %+v", role, scope)
		}
		if scope.CreatedByID != nil {
			t.Errorf("role %s: expected no creator filter", role)
		}
	}
}

func TestResolveScopeLeaderLimitedToCompanies(t *testing.T) {
	companyA := model.Company{ID: uuid.New(), Name: "A"}
	companyB := model.Company{ID: uuid.New(), Name: "B"}
	leader := userWithRole(model.RoleLeader, companyA, companyB)

	scope := ResolveScope(leader)
	if scope.Companies.All {
		t.Fatal("leader company filter must not be ALL")
	}
	if len(scope.Companies.IDs) != 2 {
		t.Fatalf("expected 2 company ids, got %d", len(scope.Companies.IDs))
	}
	if !scope.Companies.Contains(companyA.ID) || !scope.Companies.Contains(companyB.ID) {
		t.Error("leader scope missing a membership company")
	}
	if !scope.Owners.All || !scope.Departments.All {
		t.Error("leader should see all owners/departments within their companies")
	}
}

func TestResolveScopeLeaderWithoutCompaniesFailsClosed(t *testing.T) {
	leader := userWithRole(model.RoleLeader)

	scope := ResolveScope(leader)
	if scope.Companies.All {
		t.Fatal("leader without memberships must not fall back to ALL")
	}
	if len(scope.Companies.IDs) != 0 {
		t.Fatalf("expected empty company filter, got %v", scope.Companies.IDs)
	}
	if scope.Companies.Contains(uuid.New()) {
		t.Error("empty company filter must match nothing")
	}
}

func TestResolveScopeUserPinnedToOwnRecords(t *testing.T) {
	u := userWithRole(model.RoleUser)

	scope := ResolveScope(u)
	if !scope.Companies.All {
		t.Error("a USER may operate across companies")
	}
	if scope.CreatedByID == nil || *scope.CreatedByID != u.ID {
		t.Error("a USER must be pinned to self-created records")
	}
	if scope.Owners.All || len(scope.Owners.IDs) != 0 {
		t.Error("a USER is never an approver target")
	}
}

func TestResolveScopeUnknownRoleFailsClosed(t *testing.T) {
	for _, role := range []string{"", "SUPERUSER", "admin", "leader"} {
		u := userWithRole(role)
		scope := ResolveScope(u)

		if scope.Companies.All || scope.Owners.All || scope.Departments.All {
			t.Errorf("role %q: unknown role must not grant any ALL dimension", role)
		}
		if scope.CreatedByID == nil || *scope.CreatedByID != u.ID {
			t.Errorf("role %q: creator must be pinned to the caller", role)
		}
		// Whatever another user created must be invisible.
		if scope.Companies.Contains(uuid.New()) {
			t.Errorf("role %q: scope admits foreign companies", role)
		}
	}
}

func TestValidateFilters(t *testing.T) {
	companyA := model.Company{ID: uuid.New(), Name: "A"}
	otherCompany := uuid.New()
	leader := userWithRole(model.RoleLeader, companyA)

	if err := ValidateFilters(leader, &companyA.ID, nil); err != nil {
		t.Errorf("in-scope narrower filter must be permitted: %v", err)
	}

	err := ValidateFilters(leader, &otherCompany, nil)
	if !errors.Is(err, apperr.ErrScopeViolation) {
		t.Errorf("out-of-scope filter: want ErrScopeViolation, got %v", err)
	}

	admin := userWithRole(model.RoleFinanceAdmin)
	if err := ValidateFilters(admin, &otherCompany, nil); err != nil {
		t.Errorf("admin filters are never scope violations: %v", err)
	}
}
