package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"calbook/internal/domain"
)

type guestRepository struct {
	DB *sql.DB
}

func NewGuestRepository(db *sql.DB) domain.GuestRepository {
	return &guestRepository{
		DB: db,
	}
}

func (r *guestRepository) GetByID(ctx context.Context, id string) (*domain.Guest, error) {
	query := `
		SELECT id, name, email, created_at, updated_at
		FROM guests
		WHERE id = $1
	`
	g := &domain.Guest{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&g.ID, &g.Name, &g.Email, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *guestRepository) GetByEmail(ctx context.Context, email string) (*domain.Guest, error) {
	query := `
		SELECT id, name, email, created_at, updated_at
		FROM guests
		WHERE email = $1
	`
	g := &domain.Guest{}
	err := r.DB.QueryRowContext(ctx, query, email).Scan(
		&g.ID, &g.Name, &g.Email, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *guestRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM guests WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return domain.ErrGuestInUse
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
