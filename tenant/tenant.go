// Package tenant resolves practice tenants and their display variables.
// Every chat request starts with a slug lookup here; both lookups are fatal
// to the request when they fail.
package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a slug or tenant ID has no row.
var ErrNotFound = errors.New("tenant not found")

type Tenant struct {
	ID   uuid.UUID
	Slug string
	Name string
}

// Variables are the per-tenant values interpolated into the system prompt.
type Variables struct {
	PracticeName string
	Location     string
	ContactPhone string
	ResponseTime string
}

type Store interface {
	TenantBySlug(ctx context.Context, slug string) (Tenant, error)
	Variables(ctx context.Context, tenantID uuid.UUID) (Variables, error)
}
