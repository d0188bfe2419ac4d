package auth

import (
	"context"

	"github.com/google/uuid"
)

// Role is an application role granted through Azure AD app roles
type Role string

const (
	// RoleEstimator generates and edits proposals
	RoleEstimator Role = "estimator"
	// RoleReviewer approves and rejects proposals
	RoleReviewer Role = "reviewer"
	// RoleAdmin maintains the professional catalog and financial parameters
	RoleAdmin Role = "admin"
	// RoleAPIService is granted to callers authenticated with the API key
	RoleAPIService Role = "api_service"
)

// SystemUserID identifies requests made with the API key
var SystemUserID = uuid.Nil

// UserContext holds authenticated user information
type UserContext struct {
	UserID      uuid.UUID
	DisplayName string
	Email       string
	Roles       []Role
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
	return user, ok
}

// ActorFromContext returns a stable label for the caller, used for createdBy and approvedBy
func ActorFromContext(ctx context.Context) string {
	user, ok := FromContext(ctx)
	if !ok {
		return "anonymous"
	}
	if user.Email != "" {
		return user.Email
	}
	if user.DisplayName != "" {
		return user.DisplayName
	}
	return user.UserID.String()
}

// HasRole checks if user has a specific role
func (u *UserContext) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole checks if user has any of the specified roles.
// Admins and the API service pass every role check.
func (u *UserContext) HasAnyRole(roles ...Role) bool {
	if u.HasRole(RoleAdmin) || u.HasRole(RoleAPIService) {
		return true
	}
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

// RolesAsStrings returns roles as a slice of strings
func (u *UserContext) RolesAsStrings() []string {
	result := make([]string, len(u.Roles))
	for i, role := range u.Roles {
		result[i] = string(role)
	}
	return result
}
