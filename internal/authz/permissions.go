package authz

// Role is the coarse identity category determining baseline permissions.
type Role string

const (
	RoleSuperAdmin      Role = "super_admin"
	RoleAdmin           Role = "admin"
	RolePropertyManager Role = "property_manager"
	RoleAccountant      Role = "accountant"
	RoleProprietor      Role = "proprietor"
	RoleCaretaker       Role = "caretaker"
	RoleTechnician      Role = "technician"
	RoleTenant          Role = "tenant"
	RoleGuest           Role = "guest"
)

// Permission is a fine-grained allow-tag checked before a sensitive action.
type Permission string

const (
	ManageProperties     Permission = "manage_properties"
	ManageUsers          Permission = "manage_users"
	ManageApprovals      Permission = "manage_approvals"
	ManagePayments       Permission = "manage_payments"
	ManageNotifications  Permission = "manage_notifications"
	ManageRoles          Permission = "manage_roles"
	ManageSystemSettings Permission = "manage_system_settings"
	ManageMaintenance    Permission = "manage_maintenance"
	ViewAnalytics        Permission = "view_analytics"
	ViewReports          Permission = "view_reports"
	ExportData           Permission = "export_data"
	SubmitRequests       Permission = "submit_requests"
	ViewOwnData          Permission = "view_own_data"
)

// AllRoles lists every known role, highest level first.
var AllRoles = []Role{
	RoleSuperAdmin,
	RoleAdmin,
	RolePropertyManager,
	RoleAccountant,
	RoleProprietor,
	RoleCaretaker,
	RoleTechnician,
	RoleTenant,
	RoleGuest,
}

// AllPermissions lists every known permission tag.
var AllPermissions = []Permission{
	ManageProperties,
	ManageUsers,
	ManageApprovals,
	ManagePayments,
	ManageNotifications,
	ManageRoles,
	ManageSystemSettings,
	ManageMaintenance,
	ViewAnalytics,
	ViewReports,
	ExportData,
	SubmitRequests,
	ViewOwnData,
}

// roleLevels gives every role a distinct rank so role management forms a
// strict total order. A role may only manage roles of strictly lower level.
var roleLevels = map[Role]int{
	RoleSuperAdmin:      100,
	RoleAdmin:           90,
	RolePropertyManager: 70,
	RoleAccountant:      60,
	RoleProprietor:      50,
	RoleCaretaker:       40,
	RoleTechnician:      30,
	RoleTenant:          20,
	RoleGuest:           10,
}

// rolePermissions is the single source of truth for what each role may do.
// Grants happen only through this table; there is no per-user override.
// Unknown roles resolve to no permissions at all.
var rolePermissions = map[Role][]Permission{
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

// PermissionSet answers membership questions for a role's granted permissions.
type PermissionSet map[Permission]struct{}

// Has reports whether the permission is in the set.
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Codes returns the permission tags as sorted-insertion-order strings for API responses.
func (s PermissionSet) Codes() []string {
	codes := make([]string, 0, len(s))
	for _, p := range AllPermissions {
		if s.Has(p) {
			codes = append(codes, string(p))
		}
	}
	return codes
}

// PermissionsFor returns the allow-set for a role. Unknown roles map to the
// empty set: fail closed.
func PermissionsFor(role Role) PermissionSet {
	perms := rolePermissions[role]
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// RoleLevel returns the rank of a role, 0 for unknown roles.
func RoleLevel(role Role) int {
	return roleLevels[role]
}

// IsValidRole reports whether the role is one of the enumerated roles.
func IsValidRole(role Role) bool {
	_, ok := roleLevels[role]
	return ok
}

// CanManageRole reports whether actor may manage (create, suspend, reassign)
// accounts holding target. Management requires a strictly higher level, so
// no role can manage itself or its peers.
func CanManageRole(actor, target Role) bool {
	if !IsValidRole(actor) || !IsValidRole(target) {
		return false
	}
	return roleLevels[actor] > roleLevels[target]
}

// AssignableRoles returns the roles an actor may hand out, strictly below
// its own level and never including itself.
func AssignableRoles(actor Role) []Role {
	var assignable []Role
	for _, r := range AllRoles {
		if CanManageRole(actor, r) {
			assignable = append(assignable, r)
		}
	}
	return assignable
}
