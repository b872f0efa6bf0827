// Package authz maps roles to capabilities.
//
// Operations never branch on role names directly; they ask the policy whether
// the caller's role carries a capability. Adding a role means touching this
// table, not every service.
package authz

// Role names as they appear in the auth token's role claim.
const (
	RoleAgent      = "agent"
	RoleAccountant = "accountant"
	RoleDirector   = "director"
)

// Capability names an operation class a role may perform.
type Capability string

const (
	// CapStayManageAny allows editing or deleting stays created by others.
	// Creators may always manage their own stays.
	CapStayManageAny Capability = "stay.manage_any"
	// CapBudgetWrite allows creating and mutating budgets and posting
	// ledger entries.
	CapBudgetWrite Capability = "budget.write"
	// CapBudgetDelete allows deleting a budget. Restricted to the most
	// privileged role.
	CapBudgetDelete Capability = "budget.delete"
)

var policy = map[Capability][]string{
	CapStayManageAny: {RoleDirector},
	CapBudgetWrite:   {RoleAccountant, RoleDirector},
	CapBudgetDelete:  {RoleDirector},
}

// Allows reports whether the role carries the capability.
func Allows(role string, cap Capability) bool {
	for _, allowed := range policy[cap] {
		if role == allowed {
			return true
		}
	}
	return false
}

// KnownRole reports whether the role name is one this system recognizes.
func KnownRole(role string) bool {
	switch role {
	case RoleAgent, RoleAccountant, RoleDirector:
		return true
	}
	return false
}
