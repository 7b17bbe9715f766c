package forms

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/guestdesk/backend/internal/models"
	"github.com/guestdesk/backend/pkg/apperr"
	"github.com/guestdesk/backend/pkg/database"
)

// Store is the template persistence used by handlers and the registration flow.
type Store interface {
	GetByName(ctx context.Context, name string) (*models.Form, error)
	List(ctx context.Context) ([]models.Form, error)
	Create(ctx context.Context, name, content string, authorID int64) (*models.Form, error)
	Update(ctx context.Context, id int64, content string, editorID int64) (*models.Form, error)
	Delete(ctx context.Context, id int64) (*models.Form, error)
}

const formSelect = `SELECT f.id, f.name, f.content, f.created_by, f.updated_by, f.created_at, f.updated_at,
		u.id, u.username, u.first_name, u.last_name, u.email, u.is_admin
	FROM forms f JOIN users u ON u.id = f.updated_by`

// Repository handles form persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a form repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanForm(row rowScanner) (*models.Form, error) {
	var f models.Form
	var u models.UserPublic
	err := row.Scan(&f.ID, &f.Name, &f.Content, &f.CreatedBy, &f.UpdatedBy, &f.CreatedAt, &f.UpdatedAt,
		&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.IsAdmin)
	if err != nil {
		return nil, err
	}
	f.Updater = &u
	return &f, nil
}

// GetByName returns the form whose stored name equals the normalized name.
func (r *Repository) GetByName(ctx context.Context, name string) (*models.Form, error) {
	name = NormalizeName(name)
	f, err := scanForm(r.pool.QueryRow(ctx, formSelect+` WHERE f.name = $1`, name))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, apperr.NotFound(NotFoundMessage(name))
		}
		return nil, apperr.Storage("get form", err)
	}
	return f, nil
}

// GetByID returns a form by ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Form, error) {
	f, err := scanForm(r.pool.QueryRow(ctx, formSelect+` WHERE f.id = $1`, id))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, apperr.NotFound("Form not found.")
		}
		return nil, apperr.Storage("get form", err)
	}
	return f, nil
}

// List returns all forms ordered by name, each with its last editor.
func (r *Repository) List(ctx context.Context) ([]models.Form, error) {
	rows, err := r.pool.Query(ctx, formSelect+` ORDER BY f.name`)
	if err != nil {
		return nil, apperr.Storage("list forms", err)
	}
	defer rows.Close()
	var list []models.Form
	for rows.Next() {
		f, err := scanForm(rows)
		if err != nil {
			return nil, apperr.Storage("list forms", err)
		}
		list = append(list, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("list forms", err)
	}
	return list, nil
}

// Create inserts a form. A name that is already taken is a Conflict.
func (r *Repository) Create(ctx context.Context, name, content string, authorID int64) (*models.Form, error) {
	name = NormalizeName(name)
	if name == "" {
		return nil, apperr.Validation("Form name must not be blank.")
	}
	const q = `INSERT INTO forms (name, content, created_by, updated_by) VALUES ($1, $2, $3, $3) RETURNING id`
	var id int64
	if err := r.pool.QueryRow(ctx, q, name, content, authorID).Scan(&id); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict(fmt.Sprintf("Form with name '%s' already exists.", name))
		}
		return nil, apperr.Storage("create form", err)
	}
	return r.GetByID(ctx, id)
}

// Update replaces a form's content and records the editor.
func (r *Repository) Update(ctx context.Context, id int64, content string, editorID int64) (*models.Form, error) {
	const q = `UPDATE forms SET content = $2, updated_by = $3, updated_at = NOW() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id, content, editorID)
	if err != nil {
		return nil, apperr.Storage("update form", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperr.NotFound("Form not found.")
	}
	return r.GetByID(ctx, id)
}

// Delete removes a form and returns the removed row.
func (r *Repository) Delete(ctx context.Context, id int64) (*models.Form, error) {
	const q = `DELETE FROM forms WHERE id = $1
		RETURNING id, name, content, created_by, updated_by, created_at, updated_at`
	var f models.Form
	err := r.pool.QueryRow(ctx, q, id).Scan(&f.ID, &f.Name, &f.Content, &f.CreatedBy, &f.UpdatedBy, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, apperr.NotFound("Form not found.")
		}
		return nil, apperr.Storage("delete form", err)
	}
	return &f, nil
}
