package tenant

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) TenantBySlug(ctx context.Context, slug string) (Tenant, error) {
	var t Tenant
	err := s.pool.QueryRow(ctx,
		"SELECT id, slug, name FROM tenants WHERE slug = $1", slug,
	).Scan(&t.ID, &t.Slug, &t.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return Tenant{}, fmt.Errorf("tenant %q: %w", slug, ErrNotFound)
	}
	if err != nil {
		return Tenant{}, fmt.Errorf("query tenant by slug: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) Variables(ctx context.Context, tenantID uuid.UUID) (Variables, error) {
	var v Variables
	err := s.pool.QueryRow(ctx, `
        SELECT practice_name, location, contact_phone, response_time
        FROM tenant_settings
        WHERE tenant_id = $1
    `, tenantID).Scan(&v.PracticeName, &v.Location, &v.ContactPhone, &v.ResponseTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return Variables{}, fmt.Errorf("settings for tenant %s: %w", tenantID, ErrNotFound)
	}
	if err != nil {
		return Variables{}, fmt.Errorf("query tenant settings: %w", err)
	}
	return v, nil
}

// Register creates a tenant with its settings, or updates the settings when
// the slug already exists. Used by the tenant CLI command.
func (s *PostgresStore) Register(ctx context.Context, slug, name string, vars Variables) (Tenant, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return Tenant{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	t := Tenant{ID: uuid.New(), Slug: slug, Name: name}
	err = tx.QueryRow(ctx, `
        INSERT INTO tenants (id, slug, name)
        VALUES ($1, $2, $3)
        ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
        RETURNING id
    `, t.ID, slug, name).Scan(&t.ID)
	if err != nil {
		return Tenant{}, fmt.Errorf("upsert tenant: %w", err)
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO tenant_settings (tenant_id, practice_name, location, contact_phone, response_time)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (tenant_id) DO UPDATE SET
            practice_name = EXCLUDED.practice_name,
            location = EXCLUDED.location,
            contact_phone = EXCLUDED.contact_phone,
            response_time = EXCLUDED.response_time,
            updated_at = NOW()
    `, t.ID, vars.PracticeName, vars.Location, vars.ContactPhone, vars.ResponseTime)
	if err != nil {
		return Tenant{}, fmt.Errorf("upsert tenant settings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Tenant{}, fmt.Errorf("commit tx: %w", err)
	}
	return t, nil
}

var _ Store = (*PostgresStore)(nil)
