package auth

import (
	"errors"
)

var (
	ErrUnauthorized = errors.New("unauthorized: insufficient permissions")
)

// Role definitions
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)

// Permission definitions
const (
	PermissionViewConfig        = "config:read"
	PermissionEditConfig        = "config:write"
	PermissionExecuteOperations = "ops:execute"
	PermissionViewHistory       = "logs:read"
)

// RolePermissions maps roles to their allowed permissions
var RolePermissions = map[string][]string{
	RoleAdmin: {
		PermissionViewConfig,
		PermissionEditConfig,
		PermissionExecuteOperations,
		PermissionViewHistory,
	},
	RoleOperator: {
		PermissionViewConfig,
		PermissionExecuteOperations,
		PermissionViewHistory,
	},
	RoleViewer: {
		PermissionViewConfig,
		PermissionViewHistory,
	},
}

// HasPermission checks if user roles include the required permission
func HasPermission(userRoles []string, requiredPermission string) bool {
	for _, role := range userRoles {
		permissions, exists := RolePermissions[role]
		if !exists {
			continue
		}

		for _, perm := range permissions {
			if perm == requiredPermission {
				return true
			}
		}
	}
	return false
}

// RequirePermission returns a claims check for a specific permission
func RequirePermission(permission string) func(*Claims) error {
	return func(claims *Claims) error {
		if !HasPermission(claims.Roles, permission) {
			return ErrUnauthorized
		}
		return nil
	}
}
