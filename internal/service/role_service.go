package service

import (
	"context"

	"propertyhub/internal/authz"
)

// --- DTOs ---

type RoleResponse struct {
	Name        string   `json:"name"`
	Level       int      `json:"level"`
	Permissions []string `json:"permissions"`
}

// --- Interface ---

// RoleService exposes the static role/permission table to the portals. The
// table is compiled in; roles are read-only and cannot be edited at runtime.
type RoleService interface {
	ListRoles(ctx context.Context) []RoleResponse
	ListPermissions(ctx context.Context) []string
	AssignableRoles(ctx context.Context, actor Actor) []string
}

type roleService struct{}

func NewRoleService() RoleService {
	return &roleService{}
}

// --- Implementation ---

func (s *roleService) ListRoles(_ context.Context) []RoleResponse {
	res := make([]RoleResponse, 0, len(authz.AllRoles))
	for _, role := range authz.AllRoles {
		res = append(res, RoleResponse{
			Name:        string(role),
			Level:       authz.RoleLevel(role),
			Permissions: authz.PermissionsFor(role).Codes(),
		})
	}
	return res
}

func (s *roleService) ListPermissions(_ context.Context) []string {
	codes := make([]string, 0, len(authz.AllPermissions))
	for _, p := range authz.AllPermissions {
		codes = append(codes, string(p))
	}
	return codes
}

func (s *roleService) AssignableRoles(_ context.Context, actor Actor) []string {
	assignable := authz.AssignableRoles(actor.Role)
	names := make([]string, 0, len(assignable))
	for _, r := range assignable {
		names = append(names, string(r))
	}
	return names
}
