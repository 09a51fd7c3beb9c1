package auth

import "github.com/tripdesk/agency-api/internal/domain"

type shell struct {
	name     string
	basePath string
	nav      []domain.NavItem
}

var shells = map[domain.UserRoleType]shell{
	domain.RoleAdmin: {
		name:     "Admin Portal",
		basePath: "/admin",
		nav: []domain.NavItem{
			{Key: "dashboard", Label: "Dashboard", Path: "/admin"},
			{Key: "transportation", Label: "Transportation", Path: "/admin/transportation"},
			{Key: "hotels", Label: "Hotels", Path: "/admin/hotels"},
			{Key: "sightseeing", Label: "Sightseeing", Path: "/admin/sightseeing"},
			{Key: "activities", Label: "Activities", Path: "/admin/activities"},
			{Key: "tickets", Label: "Entry Tickets", Path: "/admin/tickets"},
			{Key: "meals", Label: "Meals", Path: "/admin/meals"},
			{Key: "fixed-itineraries", Label: "Fixed Itineraries", Path: "/admin/fixed-itineraries"},
			{Key: "itineraries", Label: "Itineraries", Path: "/admin/itineraries"},
			{Key: "users", Label: "Users", Path: "/admin/users"},
		},
	},
	domain.RoleAgent: {
		name:     "Agent Portal",
		basePath: "/agent",
		nav: []domain.NavItem{
			{Key: "dashboard", Label: "Dashboard", Path: "/agent"},
			{Key: "new-itinerary", Label: "Build Itinerary", Path: "/agent/itineraries/new"},
			{Key: "itineraries", Label: "My Itineraries", Path: "/agent/itineraries"},
			{Key: "fixed-itineraries", Label: "Fixed Packages", Path: "/agent/fixed-itineraries"},
		},
	},
	domain.RoleSales: {
		name:     "Sales Portal",
		basePath: "/sales",
		nav: []domain.NavItem{
			{Key: "dashboard", Label: "Dashboard", Path: "/sales"},
			{Key: "follow-ups", Label: "Today's Follow-ups", Path: "/sales/follow-ups/today"},
			{Key: "clients", Label: "Clients", Path: "/sales/clients"},
			{Key: "itineraries", Label: "Itineraries", Path: "/sales/itineraries"},
			{Key: "assignments", Label: "Assignments", Path: "/sales/assignments"},
		},
	},
	domain.RoleOperations: {
		name:     "Operations Portal",
		basePath: "/operations",
		nav: []domain.NavItem{
			{Key: "dashboard", Label: "Dashboard", Path: "/operations"},
			{Key: "assignments", Label: "Assignments", Path: "/operations/assignments"},
		},
	},
	domain.RoleGuest: {
		name:     "Guest Portal",
		basePath: "/guest",
		nav: []domain.NavItem{
			{Key: "packages", Label: "Packages", Path: "/guest"},
		},
	},
}

// ShellFor returns the portal descriptor for a role. Unknown roles get the
// guest shell.
func ShellFor(role domain.UserRoleType) domain.ShellDTO {
	s, ok := shells[role]
	if !ok {
		role = domain.RoleGuest
		s = shells[role]
	}
	nav := make([]domain.NavItem, len(s.nav))
	copy(nav, s.nav)
	return domain.ShellDTO{
		Role:        role,
		Name:        s.name,
		BasePath:    s.basePath,
		Navigation:  nav,
		Permissions: PermissionsFor(role),
	}
}
