// Package companies keeps the deduplicated directory of visitor companies.
package companies

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/guestdesk/backend/internal/models"
	"github.com/guestdesk/backend/pkg/apperr"
	"github.com/guestdesk/backend/pkg/database"
)

// ensureAttempts bounds the insert/select loop when the winning row is deleted in between.
const ensureAttempts = 3

// Directory is the company persistence used by handlers and the registration flow.
type Directory interface {
	Ensure(ctx context.Context, name string) (*models.Company, error)
	List(ctx context.Context) ([]models.Company, error)
	Create(ctx context.Context, name string) (*models.Company, error)
	Delete(ctx context.Context, id int64) error
}

// Repository handles company persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a company repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Ensure returns the company with the given name, creating it if absent.
// Concurrent calls for one name yield one row; an existing row is never modified.
func (r *Repository) Ensure(ctx context.Context, name string) (*models.Company, error) {
	name = NormalizeName(name)
	if name == "" {
		return nil, apperr.Validation("Company name must not be blank.")
	}
	const insert = `INSERT INTO companies (name) VALUES ($1)
		ON CONFLICT (name) DO NOTHING
		RETURNING id, name, created_at`
	const selectByName = `SELECT id, name, created_at FROM companies WHERE name = $1`

	var lastErr error
	for attempt := 0; attempt < ensureAttempts; attempt++ {
		var c models.Company
		err := r.pool.QueryRow(ctx, insert, name).Scan(&c.ID, &c.Name, &c.CreatedAt)
		if err == nil {
			return &c, nil
		}
		if !database.IsNoRows(err) && !database.IsUniqueViolation(err) {
			return nil, apperr.Storage("ensure company", err)
		}
		// Another writer owns the row; read it.
		err = r.pool.QueryRow(ctx, selectByName, name).Scan(&c.ID, &c.Name, &c.CreatedAt)
		if err == nil {
			return &c, nil
		}
		if !database.IsNoRows(err) {
			return nil, apperr.Storage("ensure company", err)
		}
		lastErr = err
	}
	return nil, apperr.Storage("ensure company", fmt.Errorf("row for %q vanished %d times: %w", name, ensureAttempts, lastErr))
}

// List returns all companies ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Company, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM companies ORDER BY name ASC`)
	if err != nil {
		return nil, apperr.Storage("list companies", err)
	}
	defer rows.Close()
	var list []models.Company
	for rows.Next() {
		var c models.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, apperr.Storage("list companies", err)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("list companies", err)
	}
	return list, nil
}

// Create inserts a company. An existing name is a Conflict.
func (r *Repository) Create(ctx context.Context, name string) (*models.Company, error) {
	name = NormalizeName(name)
	if name == "" {
		return nil, apperr.Validation("Company name must not be blank.")
	}
	var c models.Company
	err := r.pool.QueryRow(ctx, `INSERT INTO companies (name) VALUES ($1) RETURNING id, name, created_at`, name).
		Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict(fmt.Sprintf("Company with name '%s' already exists.", name))
		}
		return nil, apperr.Storage("create company", err)
	}
	return &c, nil
}

// Delete removes a company by ID.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return apperr.Storage("delete company", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Company not found.")
	}
	return nil
}
