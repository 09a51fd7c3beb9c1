package auth

import "github.com/tripdesk/agency-api/internal/domain"

var rolePermissions = map[domain.UserRoleType][]domain.PermissionType{
	domain.RoleAdmin: domain.AllPermissions(),
	domain.RoleAgent: {
		domain.PermissionCatalogRead,
		domain.PermissionClientsRead, domain.PermissionClientsWrite,
		domain.PermissionItinerariesRead, domain.PermissionItinerariesWrite, domain.PermissionItinerariesPrice,
		domain.PermissionFixedItinerariesRead,
	},
	domain.RoleSales: {
		domain.PermissionCatalogRead,
		domain.PermissionClientsRead, domain.PermissionClientsWrite,
		domain.PermissionItinerariesRead, domain.PermissionItinerariesWrite, domain.PermissionItinerariesPrice,
		domain.PermissionFixedItinerariesRead,
		domain.PermissionFollowUpsRead, domain.PermissionFollowUpsWrite,
		domain.PermissionAssignmentsRead, domain.PermissionAssignmentsCreate,
		domain.PermissionChatUse,
	},
	domain.RoleOperations: {
		domain.PermissionCatalogRead,
		domain.PermissionItinerariesRead,
		domain.PermissionAssignmentsRead, domain.PermissionAssignmentsWrite,
		domain.PermissionChatUse,
	},
	domain.RoleGuest: {
		domain.PermissionCatalogRead,
		domain.PermissionFixedItinerariesRead,
	},
}

// RoleHasPermission checks if a role has a permission by default
func RoleHasPermission(role domain.UserRoleType, permission domain.PermissionType) bool {
	for _, p := range rolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// PermissionsFor returns the permissions of a role as strings
func PermissionsFor(role domain.UserRoleType) []string {
	perms := rolePermissions[role]
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}
