package domain

// PermissionType names an action a role may perform
type PermissionType string

const (
	PermissionCatalogRead          PermissionType = "catalog:read"
	PermissionCatalogWrite         PermissionType = "catalog:write"
	PermissionClientsRead          PermissionType = "clients:read"
	PermissionClientsWrite         PermissionType = "clients:write"
	PermissionItinerariesRead      PermissionType = "itineraries:read"
	PermissionItinerariesWrite     PermissionType = "itineraries:write"
	PermissionItinerariesPrice     PermissionType = "itineraries:price"
	PermissionFixedItinerariesRead PermissionType = "fixed_itineraries:read"
	PermissionFixedItinerariesEdit PermissionType = "fixed_itineraries:write"
	PermissionFollowUpsRead        PermissionType = "followups:read"
	PermissionFollowUpsWrite       PermissionType = "followups:write"
	PermissionAssignmentsRead      PermissionType = "assignments:read"
	PermissionAssignmentsCreate    PermissionType = "assignments:create"
	PermissionAssignmentsWrite     PermissionType = "assignments:write"
	PermissionChatUse              PermissionType = "chat:use"
	PermissionUsersManage          PermissionType = "users:manage"
	PermissionAuditRead            PermissionType = "audit:read"
	PermissionSnapshotsManage      PermissionType = "snapshots:manage"
)

// AllPermissions returns every permission in display order
func AllPermissions() []PermissionType {
	return []PermissionType{
		PermissionCatalogRead, PermissionCatalogWrite,
		PermissionClientsRead, PermissionClientsWrite,
		PermissionItinerariesRead, PermissionItinerariesWrite, PermissionItinerariesPrice,
		PermissionFixedItinerariesRead, PermissionFixedItinerariesEdit,
		PermissionFollowUpsRead, PermissionFollowUpsWrite,
		PermissionAssignmentsRead, PermissionAssignmentsCreate, PermissionAssignmentsWrite,
		PermissionChatUse,
		PermissionUsersManage, PermissionAuditRead, PermissionSnapshotsManage,
	}
}
