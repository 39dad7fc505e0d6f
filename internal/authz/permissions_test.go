package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// expectedGrants is the full role×permission truth table. Any permission
// not listed for a role must be denied.
var expectedGrants = map[Role][]Permission{
	RoleSuperAdmin: {
		ManageProperties, ManageUsers, ManageApprovals, ManagePayments,
		ManageNotifications, ManageRoles, ManageSystemSettings, ManageMaintenance,
		ViewAnalytics, ViewReports, ExportData, SubmitRequests, ViewOwnData,
	},
	RoleAdmin: {
		ManageProperties, ManageUsers, ManageApprovals, ManagePayments,
		ManageNotifications, ManageMaintenance,
		ViewAnalytics, ViewReports, ExportData, SubmitRequests, ViewOwnData,
	},
	RolePropertyManager: {
		ManageProperties, ManageApprovals, ManageMaintenance,
		ViewAnalytics, ViewReports, SubmitRequests, ViewOwnData,
	},
	RoleAccountant: {
		ManagePayments, ViewAnalytics, ViewReports, ExportData, ViewOwnData,
	},
	RoleProprietor: {
		ViewAnalytics, ViewReports, ViewOwnData,
	},
	RoleCaretaker: {
		ManageMaintenance, SubmitRequests, ViewOwnData,
	},
	RoleTechnician: {
		SubmitRequests, ViewOwnData,
	},
	RoleTenant: {
		SubmitRequests, ViewOwnData,
	},
	RoleGuest: {},
}

func TestPermissionsForTruthTable(t *testing.T) {
	require.Len(t, expectedGrants, len(AllRoles), "truth table must cover every role")

	for _, role := range AllRoles {
		granted := make(map[Permission]bool)
		for _, p := range expectedGrants[role] {
			granted[p] = true
		}

		set := PermissionsFor(role)
		for _, p := range AllPermissions {
			assert.Equalf(t, granted[p], set.Has(p),
				"role %s permission %s", role, p)
		}
	}
}

func TestPermissionsForUnknownRoleIsEmpty(t *testing.T) {
	set := PermissionsFor(Role("intruder"))
	assert.Empty(t, set)
	for _, p := range AllPermissions {
		assert.False(t, set.Has(p))
	}
}

func TestRoleLevelsAreDistinct(t *testing.T) {
	seen := make(map[int]Role)
	for _, role := range AllRoles {
		level := RoleLevel(role)
		require.Greater(t, level, 0, "role %s must have a positive level", role)
		prev, dup := seen[level]
		require.Falsef(t, dup, "roles %s and %s share level %d", prev, role, level)
		seen[level] = role
	}
}

func TestCanManageRoleIsStrictOrder(t *testing.T) {
	for _, a := range AllRoles {
		assert.Falsef(t, CanManageRole(a, a), "role %s must not manage itself", a)
		for _, b := range AllRoles {
			if a == b {
				continue
			}
			// Exactly one direction holds between distinct roles.
			assert.NotEqualf(t, CanManageRole(a, b), CanManageRole(b, a),
				"management between %s and %s must be asymmetric", a, b)
			assert.Equalf(t, RoleLevel(a) > RoleLevel(b), CanManageRole(a, b),
				"management %s -> %s must follow levels", a, b)
		}
	}

	assert.False(t, CanManageRole(Role("nobody"), RoleGuest))
	assert.False(t, CanManageRole(RoleSuperAdmin, Role("nobody")))
}

func TestAssignableRolesExcludesSelfAndAbove(t *testing.T) {
	for _, role := range AllRoles {
		for _, assignable := range AssignableRoles(role) {
			assert.NotEqual(t, role, assignable)
			assert.Less(t, RoleLevel(assignable), RoleLevel(role))
		}
	}

	assert.Empty(t, AssignableRoles(RoleGuest))
	assert.Len(t, AssignableRoles(RoleSuperAdmin), len(AllRoles)-1)
}

func TestPermissionSetCodes(t *testing.T) {
	codes := PermissionsFor(RoleTenant).Codes()
	assert.ElementsMatch(t, []string{"submit_requests", "view_own_data"}, codes)
}
