package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var checkerActions = []string{
	"approve_request", "reject_request", "bulk_process_requests",
	"create_property", "update_property", "delete_property",
	"assign_technician", "record_payment", "issue_refund",
	"invite_user", "change_user_role", "send_announcement",
	"view_dashboard", "view_audit_log", "export_report",
	"submit_maintenance", "submit_lease_request",
}

func TestCheckerCombinators(t *testing.T) {
	manager := NewChecker(RolePropertyManager)

	assert.True(t, manager.Has(ManageApprovals))
	assert.False(t, manager.Has(ManagePayments))

	assert.True(t, manager.HasAny(ManagePayments, ManageApprovals))
	assert.False(t, manager.HasAny(ManagePayments, ManageRoles))

	assert.True(t, manager.HasAll(ManageProperties, ViewReports))
	assert.False(t, manager.HasAll(ManageProperties, ManageUsers))

	// Degenerate combinator inputs.
	assert.False(t, manager.HasAny())
	assert.True(t, manager.HasAll())
}

func TestCheckerCanFailsClosed(t *testing.T) {
	admin := NewChecker(RoleSuperAdmin)
	assert.False(t, admin.Can("launch_missiles"))
	assert.False(t, admin.Can(""))
}

func TestTenantCannotApproveSuperAdminCan(t *testing.T) {
	tenant := NewChecker(RoleTenant)
	superAdmin := NewChecker(RoleSuperAdmin)

	assert.False(t, tenant.Can("approve_request"))
	for _, action := range checkerActions {
		assert.Truef(t, superAdmin.Can(action), "super_admin denied %s", action)
	}

	// Tenants keep only their self-service actions.
	assert.True(t, tenant.Can("submit_maintenance"))
	assert.True(t, tenant.Can("submit_lease_request"))
	assert.False(t, tenant.Can("record_payment"))
	assert.False(t, tenant.Can("view_audit_log"))
}

func TestCanAccessRoute(t *testing.T) {
	assert.True(t, NewChecker(RoleSuperAdmin).CanAccessRoute(ManageRoles))
	assert.True(t, NewChecker(RoleSuperAdmin).CanAccessRoute("some_unknown_gate"))

	accountant := NewChecker(RoleAccountant)
	assert.True(t, accountant.CanAccessRoute(ManagePayments))
	assert.False(t, accountant.CanAccessRoute(ManageProperties))
	assert.True(t, accountant.CanAccessRoute(""))
}

func TestCanEditProfile(t *testing.T) {
	self := uuid.New()
	other := uuid.New()

	tenant := NewChecker(RoleTenant)
	assert.True(t, tenant.CanEditProfile(self, self), "self-service edit always allowed")
	assert.False(t, tenant.CanEditProfile(other, self))

	admin := NewChecker(RoleAdmin)
	assert.True(t, admin.CanEditProfile(other, self), "manage_users unlocks other profiles")
}

func TestCanManageSystemSettings(t *testing.T) {
	superAdmin := NewChecker(RoleSuperAdmin)
	assert.True(t, superAdmin.CanManageSystemSettings(""))
	assert.True(t, superAdmin.CanManageSystemSettings("email"))
	assert.True(t, superAdmin.CanManageSystemSettings("payment"))
	assert.True(t, superAdmin.CanManageSystemSettings("security"))
	assert.False(t, superAdmin.CanManageSystemSettings("plumbing"), "unknown category denied")

	// Nobody below super_admin holds manage_system_settings.
	for _, role := range AllRoles {
		if role == RoleSuperAdmin {
			continue
		}
		assert.Falsef(t, NewChecker(role).CanManageSystemSettings(""), "role %s", role)
		assert.Falsef(t, NewChecker(role).CanManageSystemSettings("email"), "role %s", role)
	}
}
