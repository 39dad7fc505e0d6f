package authz

import "github.com/google/uuid"

// actionPermissions maps higher-level action names used by the portals to
// the permission that gates them. Unknown actions are denied.
var actionPermissions = map[string]Permission{
	"approve_request":       ManageApprovals,
	"reject_request":        ManageApprovals,
	"bulk_process_requests": ManageApprovals,
	"create_property":       ManageProperties,
	"update_property":       ManageProperties,
	"delete_property":       ManageProperties,
	"assign_technician":     ManageMaintenance,
	"record_payment":        ManagePayments,
	"issue_refund":          ManagePayments,
	"invite_user":           ManageUsers,
	"change_user_role":      ManageRoles,
	"send_announcement":     ManageNotifications,
	"view_dashboard":        ViewAnalytics,
	"view_audit_log":        ViewReports,
	"export_report":         ExportData,
	"submit_maintenance":    SubmitRequests,
	"submit_lease_request":  SubmitRequests,
}

// settingsCategoryPermissions maps a system-settings category to the extra
// permission it requires on top of manage_system_settings.
var settingsCategoryPermissions = map[string]Permission{
	"email":    ManageNotifications,
	"payment":  ManagePayments,
	"security": ManageRoles,
}

// Checker answers authorization questions for a single role. It holds no
// mutable state and is safe to share; build one per request from the
// authenticated role.
type Checker struct {
	role  Role
	perms PermissionSet
}

// NewChecker builds a Checker for the given role. Unknown roles get an
// empty permission set and deny everything.
func NewChecker(role Role) *Checker {
	return &Checker{role: role, perms: PermissionsFor(role)}
}

// Role returns the role the checker was built from.
func (c *Checker) Role() Role {
	return c.role
}

// Has reports whether the role holds the permission.
func (c *Checker) Has(p Permission) bool {
	return c.perms.Has(p)
}

// HasAny reports whether the role holds at least one of the permissions.
func (c *Checker) HasAny(perms ...Permission) bool {
	for _, p := range perms {
		if c.perms.Has(p) {
			return true
		}
	}
	return false
}

// HasAll reports whether the role holds every one of the permissions.
func (c *Checker) HasAll(perms ...Permission) bool {
	for _, p := range perms {
		if !c.perms.Has(p) {
			return false
		}
	}
	return true
}

// Can resolves an action name through the action table and checks the
// resulting permission. Unrecognized actions are denied.
func (c *Checker) Can(action string) bool {
	p, ok := actionPermissions[action]
	if !ok {
		return false
	}
	return c.Has(p)
}

// CanAccessRoute gates portal routes. super_admin passes unconditionally;
// everyone else needs the route's permission. An empty permission means the
// route is open to any authenticated role.
func (c *Checker) CanAccessRoute(routePermission Permission) bool {
	if c.role == RoleSuperAdmin {
		return true
	}
	if routePermission == "" {
		return true
	}
	return c.Has(routePermission)
}

// CanEditProfile allows self-service edits of one's own profile, and edits
// of any profile for holders of manage_users.
func (c *Checker) CanEditProfile(targetUserID, actingUserID uuid.UUID) bool {
	if targetUserID == actingUserID {
		return true
	}
	return c.Has(ManageUsers)
}

// CanManageSystemSettings requires manage_system_settings, plus the
// category-specific permission when a category is given. Unknown categories
// are denied.
func (c *Checker) CanManageSystemSettings(category string) bool {
	if !c.Has(ManageSystemSettings) {
		return false
	}
	if category == "" {
		return true
	}
	p, ok := settingsCategoryPermissions[category]
	if !ok {
		return false
	}
	return c.Has(p)
}

// CanManageRole delegates to the role-level ranking.
func (c *Checker) CanManageRole(target Role) bool {
	return CanManageRole(c.role, target)
}

// AssignableRoles delegates to the role-level ranking.
func (c *Checker) AssignableRoles() []Role {
	return AssignableRoles(c.role)
}
