// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// UserContext contains authenticated caller information.
// EmployeeID is the profile id carried in the JWT subject; documents
// record it as the acting employee.
type UserContext struct {
	EmployeeID string
	Email      string
	Roles      []string
	SessionID  string
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetEmployeeID returns the acting employee id from context or empty string.
func GetEmployeeID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.EmployeeID
	}
	return ""
}

// HasRole checks if the caller has a specific business role.
func HasRole(ctx context.Context, role string) bool {
	u := GetUser(ctx)
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
