// Package domain provides the core types, ports and context helpers of the
// recurring-job scheduler.
//
// Context helpers carry the tenant being processed through a batch run so that
// lower layers can refuse to touch records belonging to another tenant.
package domain

import (
	"context"

	"github.com/google/uuid"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	// tenantContextKey stores the tenant currently being processed.
	tenantContextKey contextKey = iota

	// runIDContextKey stores the identifier of the batch run.
	runIDContextKey
)

// NewContextWithTenant returns a new context with the tenant attached.
func NewContextWithTenant(ctx context.Context, tenant *Tenant) context.Context {
	return context.WithValue(ctx, tenantContextKey, tenant)
}

// TenantFromContext retrieves the tenant from context.
// Returns nil if no tenant is present.
func TenantFromContext(ctx context.Context) *Tenant {
	tenant, _ := ctx.Value(tenantContextKey).(*Tenant)
	return tenant
}

// TenantIDFromContext retrieves the tenant ID from context.
// Returns uuid.Nil if no tenant is present.
func TenantIDFromContext(ctx context.Context) uuid.UUID {
	if tenant := TenantFromContext(ctx); tenant != nil {
		return tenant.ID
	}
	return uuid.Nil
}

// CheckTenant returns ErrTenantMismatch when the context carries a tenant
// that differs from owner. A context without a tenant passes.
func CheckTenant(ctx context.Context, owner uuid.UUID) error {
	id := TenantIDFromContext(ctx)
	if id != uuid.Nil && id != owner {
		return ErrTenantMismatch
	}
	return nil
}

// NewContextWithRunID returns a new context tagged with a batch run ID.
func NewContextWithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDContextKey, runID)
}

// RunIDFromContext retrieves the batch run ID from context.
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDContextKey).(string)
	return id
}
