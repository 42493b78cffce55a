package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"calbook/internal/domain"
)

// Postgres error codes we map to domain errors.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

type hostRepository struct {
	DB *sql.DB
}

func NewHostRepository(db *sql.DB) domain.HostRepository {
	return &hostRepository{
		DB: db,
	}
}

func (r *hostRepository) Create(ctx context.Context, h *domain.Host) error {
	query := `
		INSERT INTO hosts (id, name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.DB.ExecContext(ctx, query, h.ID, h.Name, h.Email, h.PasswordHash, h.CreatedAt, h.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *hostRepository) GetByID(ctx context.Context, id string) (*domain.Host, error) {
	query := `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM hosts
		WHERE id = $1
	`
	h := &domain.Host{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&h.ID, &h.Name, &h.Email, &h.PasswordHash, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return h, nil
}

func (r *hostRepository) GetByEmail(ctx context.Context, email string) (*domain.Host, error) {
	query := `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM hosts
		WHERE email = $1
	`
	h := &domain.Host{}
	err := r.DB.QueryRowContext(ctx, query, email).Scan(
		&h.ID, &h.Name, &h.Email, &h.PasswordHash, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return h, nil
}

func (r *hostRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM hosts WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return domain.ErrHostInUse
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
