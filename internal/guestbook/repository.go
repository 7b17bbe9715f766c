// Package guestbook records guest registrations and serves their documents.
package guestbook

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/guestdesk/backend/internal/models"
	"github.com/guestdesk/backend/pkg/apperr"
	"github.com/guestdesk/backend/pkg/database"
)

// Ledger is the append-only guest book. There is no update or delete.
type Ledger interface {
	Append(ctx context.Context, visitor models.Visitor, pdf []byte) (*models.GuestSubmission, error)
	List(ctx context.Context) ([]models.GuestSubmission, error)
	GetDocument(ctx context.Context, id int64) ([]byte, *models.GuestSubmission, error)
}

// Repository handles guest book persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a guest book repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Append stores a submission together with its rendered document.
func (r *Repository) Append(ctx context.Context, visitor models.Visitor, pdf []byte) (*models.GuestSubmission, error) {
	s := &models.GuestSubmission{Visitor: visitor}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO guest_book (first_name, last_name, company, phone, email, pdf_file)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		visitor.FirstName, visitor.LastName, visitor.Company, visitor.Phone, visitor.Email, pdf,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return nil, apperr.Storage("append guest submission", err)
	}
	return s, nil
}

// List returns submission summaries, newest first. Documents are not loaded.
func (r *Repository) List(ctx context.Context) ([]models.GuestSubmission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, first_name, last_name, company, phone, email, created_at
		 FROM guest_book ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, apperr.Storage("list guest submissions", err)
	}
	defer rows.Close()
	var list []models.GuestSubmission
	for rows.Next() {
		var s models.GuestSubmission
		if err := rows.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Company, &s.Phone, &s.Email, &s.CreatedAt); err != nil {
			return nil, apperr.Storage("list guest submissions", err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("list guest submissions", err)
	}
	return list, nil
}

// GetDocument returns the stored PDF and its submission summary.
func (r *Repository) GetDocument(ctx context.Context, id int64) ([]byte, *models.GuestSubmission, error) {
	var s models.GuestSubmission
	var pdf []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, first_name, last_name, company, phone, email, created_at, pdf_file
		 FROM guest_book WHERE id = $1`, id,
	).Scan(&s.ID, &s.FirstName, &s.LastName, &s.Company, &s.Phone, &s.Email, &s.CreatedAt, &pdf)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil, apperr.NotFound("Guest book entry not found.")
		}
		return nil, nil, apperr.Storage("get guest document", err)
	}
	return pdf, &s, nil
}
