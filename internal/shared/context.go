package shared

import "context"

// Scope identifies the tenant and actor on whose behalf an operation runs.
// It is threaded explicitly through context instead of living in module
// globals so that multi-tenant operations stay isolated.
type Scope struct {
	CompanyID int64
	ActorID   int64
}

type scopeContextKey struct{}

// ContextWithScope stores the scope in context.
func ContextWithScope(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, scope)
}

// ScopeFromContext extracts the scope from context. The zero value is
// returned when no scope was attached.
func ScopeFromContext(ctx context.Context) Scope {
	scope, _ := ctx.Value(scopeContextKey{}).(Scope)
	return scope
}
