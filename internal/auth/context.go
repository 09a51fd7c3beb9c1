package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/tripdesk/agency-api/internal/domain"
)

// UserContext holds authenticated user information
type UserContext struct {
	UserID      uuid.UUID
	DisplayName string
	Email       string
	Role        domain.UserRoleType
	CompanyName string
	// IsSystem is set for requests authenticated with the API key
	IsSystem bool
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok && user != nil
}

// HasRole checks if user has a specific role
func (u *UserContext) HasRole(role domain.UserRoleType) bool {
	return u.Role == role
}

// HasAnyRole checks if user has any of the specified roles
func (u *UserContext) HasAnyRole(roles ...domain.UserRoleType) bool {
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user sees every record regardless of owner
func (u *UserContext) IsAdmin() bool {
	return u.IsSystem || u.Role == domain.RoleAdmin
}

// HasPermission checks the role's default permission set
func (u *UserContext) HasPermission(permission domain.PermissionType) bool {
	if u.IsAdmin() {
		return true
	}
	return RoleHasPermission(u.Role, permission)
}

// OwnerFilter returns the user id records must belong to, or nil when the
// user may see everything.
func (u *UserContext) OwnerFilter() *uuid.UUID {
	if u.IsAdmin() {
		return nil
	}
	id := u.UserID
	return &id
}
