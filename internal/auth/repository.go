package auth

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/guestdesk/backend/internal/models"
	"github.com/guestdesk/backend/pkg/apperr"
	"github.com/guestdesk/backend/pkg/database"
)

const userColumns = `id, username, first_name, last_name, email, password_hash, enabled, is_admin, last_login, created_at, updated_at`

// UserStore is the persistence the auth handler needs.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, p CreateUserParams) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, firstName, lastName, email string) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	TouchLastLogin(ctx context.Context, id int64) error
}

// CreateUserParams holds the fields of a new account.
type CreateUserParams struct {
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Email        string
	IsAdmin      bool
}

// Repository handles user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.Password,
		&u.Enabled, &u.IsAdmin, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID returns a user by ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Storage("get user", err)
	}
	return u, nil
}

// GetByUsername returns a user by normalized username.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, NormalizeUsername(username)))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Storage("get user", err)
	}
	return u, nil
}

// List returns all users ordered by username.
func (r *Repository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, apperr.Storage("list users", err)
	}
	defer rows.Close()
	var list []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, apperr.Storage("list users", err)
		}
		list = append(list, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("list users", err)
	}
	return list, nil
}

// Create inserts a new user. A taken username is a Conflict.
func (r *Repository) Create(ctx context.Context, p CreateUserParams) (*models.User, error) {
	const q = `INSERT INTO users (username, password_hash, first_name, last_name, email, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING ` + userColumns
	u, err := scanUser(r.pool.QueryRow(ctx, q, NormalizeUsername(p.Username), p.PasswordHash, p.FirstName, p.LastName, p.Email, p.IsAdmin))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("Username already exists")
		}
		return nil, apperr.Storage("create user", err)
	}
	return u, nil
}

// UpdateProfile sets the user's display fields.
func (r *Repository) UpdateProfile(ctx context.Context, id int64, firstName, lastName, email string) error {
	const q = `UPDATE users SET first_name = $2, last_name = $3, email = $4, updated_at = NOW() WHERE id = $1`
	return r.execOne(ctx, "update user", q, id, firstName, lastName, email)
}

// UpdatePassword replaces the stored password hash.
func (r *Repository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	const q = `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	return r.execOne(ctx, "update password", q, id, passwordHash)
}

// TouchLastLogin records a successful login.
func (r *Repository) TouchLastLogin(ctx context.Context, id int64) error {
	return r.execOne(ctx, "touch last login", `UPDATE users SET last_login = NOW() WHERE id = $1`, id)
}

// EnsureDefaultAdmin creates the administrator account if the username is free.
// An existing account is left untouched, including its password.
func (r *Repository) EnsureDefaultAdmin(ctx context.Context, username, passwordHash string) (bool, error) {
	const q = `INSERT INTO users (username, password_hash, first_name, last_name, email, is_admin)
		VALUES ($1, $2, 'Admin', 'Admin', '', TRUE)
		ON CONFLICT (username) DO NOTHING`
	tag, err := r.pool.Exec(ctx, q, NormalizeUsername(username), passwordHash)
	if err != nil {
		return false, apperr.Storage("seed admin", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repository) execOne(ctx context.Context, op, q string, args ...any) error {
	tag, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		return apperr.Storage(op, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}
