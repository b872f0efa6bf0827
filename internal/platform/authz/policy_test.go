package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicy(t *testing.T) {
	t.Run("only director manages foreign stays", func(t *testing.T) {
		assert.True(t, Allows(RoleDirector, CapStayManageAny))
		assert.False(t, Allows(RoleAgent, CapStayManageAny))
		assert.False(t, Allows(RoleAccountant, CapStayManageAny))
	})

	t.Run("finance roles write budgets", func(t *testing.T) {
		assert.True(t, Allows(RoleAccountant, CapBudgetWrite))
		assert.True(t, Allows(RoleDirector, CapBudgetWrite))
		assert.False(t, Allows(RoleAgent, CapBudgetWrite))
	})

	t.Run("only director deletes budgets", func(t *testing.T) {
		assert.True(t, Allows(RoleDirector, CapBudgetDelete))
		assert.False(t, Allows(RoleAccountant, CapBudgetDelete))
	})

	t.Run("unknown role has no capabilities", func(t *testing.T) {
		assert.False(t, Allows("intern", CapBudgetWrite))
		assert.False(t, KnownRole("intern"))
	})
}
