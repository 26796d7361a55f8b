package domain

// ContextKey is the type used for request-scoped context values
type ContextKey string

const (
	// UserIDKey carries the authenticated user's ID through the request context
	UserIDKey ContextKey = "user_id"

	// RolesKey carries the authenticated user's roles through the request context
	RolesKey ContextKey = "roles"
)
