package permission

import (
	"testing"

	"backend/internal/model"

	"github.com/google/uuid"
)

// Leader L belongs to company A only. E1 is A's expense owned by L, E2 is B's
// expense owned by L. L may view and approve E1 but neither for E2.
func TestLeaderCrossCompanyScenario(t *testing.T) {
	companyA := model.Company{ID: uuid.New(), Name: "A"}
	companyB := model.Company{ID: uuid.New(), Name: "B"}
	leader := userWithRole(model.RoleLeader, companyA)

	e1 := &model.Expense{ID: uuid.New(), CompanyID: companyA.ID, OwnerID: leader.ID}
	e2 := &model.Expense{ID: uuid.New(), CompanyID: companyB.ID, OwnerID: leader.ID}

	if !CanView(leader, e1) {
		t.Error("leader must view expenses of their own company")
	}
	if CanView(leader, e2) {
		t.Error("leader must not view expenses outside their companies")
	}
	if !CanApprove(leader, e1) {
		t.Error("leader must approve owned expense in their company")
	}
	if CanApprove(leader, e2) {
		t.Error("ownership without company membership must deny approval")
	}
}

func TestCanViewByRole(t *testing.T) {
	company := model.Company{ID: uuid.New()}
	creator := userWithRole(model.RoleUser)
	expense := &model.Expense{
		ID:          uuid.New(),
		CompanyID:   company.ID,
		OwnerID:     uuid.New(),
		CreatedByID: &creator.ID,
	}

	if !CanView(userWithRole(model.RoleSystemAdmin), expense) {
		t.Error("system admin must view everything")
	}
	if !CanView(userWithRole(model.RoleFinanceAdmin), expense) {
		t.Error("finance admin must view everything")
	}
	if !CanView(creator, expense) {
		t.Error("creator must view their own expense")
	}
	if CanView(userWithRole(model.RoleUser), expense) {
		t.Error("another USER must not view a foreign expense")
	}
	if CanView(userWithRole("MYSTERY"), expense) {
		t.Error("unknown role must view nothing")
	}
}

func TestCanApproveDeniedForUsersAndUnknown(t *testing.T) {
	expense := &model.Expense{ID: uuid.New(), CompanyID: uuid.New(), OwnerID: uuid.New()}

	u := userWithRole(model.RoleUser)
	u.ID = expense.OwnerID // even as owner, a USER cannot approve
	if CanApprove(u, expense) {
		t.Error("USER role must never approve")
	}
	if CanApprove(userWithRole(""), expense) {
		t.Error("blank role must never approve")
	}
	if !CanApprove(userWithRole(model.RoleFinanceAdmin), expense) {
		t.Error("finance admin approves anything")
	}
}

func TestCanCreateInCompany(t *testing.T) {
	companyA := model.Company{ID: uuid.New()}
	other := uuid.New()

	leader := userWithRole(model.RoleLeader, companyA)
	if !CanCreateInCompany(leader, companyA.ID) {
		t.Error("leader creates inside own company")
	}
	if CanCreateInCompany(leader, other) {
		t.Error("leader must not create outside memberships")
	}

	if !CanCreateInCompany(userWithRole(model.RoleUser), other) {
		t.Error("a USER may file an expense under any company")
	}
	if CanCreateInCompany(userWithRole("bogus"), other) {
		t.Error("unknown role must not create anywhere")
	}
}
