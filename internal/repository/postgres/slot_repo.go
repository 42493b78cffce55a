package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"calbook/internal/domain"
)

type slotRepository struct {
	DB *sql.DB
}

func NewSlotRepository(db *sql.DB) domain.SlotRepository {
	return &slotRepository{
		DB: db,
	}
}

func (r *slotRepository) Create(ctx context.Context, s *domain.Slot) error {
	query := `
		INSERT INTO slots (id, host_id, start_time, duration_minutes, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.DB.ExecContext(ctx, query,
		s.ID, s.HostID, s.StartTime, s.DurationMinutes, s.Status, s.CreatedAt, s.UpdatedAt,
	)
	return err
}

func (r *slotRepository) GetByID(ctx context.Context, id string) (*domain.Slot, error) {
	query := `
		SELECT id, host_id, start_time, duration_minutes, status, created_at, updated_at
		FROM slots
		WHERE id = $1
	`
	s := &domain.Slot{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.HostID, &s.StartTime, &s.DurationMinutes, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSlotNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *slotRepository) List(ctx context.Context, filter domain.SlotFilter, page domain.PaginationParams) ([]*domain.Slot, int, error) {
	whereClauses := []string{}
	args := []interface{}{}
	n := 1
	if filter.HostID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("host_id = $%d", n))
		args = append(args, filter.HostID)
		n++
	}
	if filter.Status != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", n))
		args = append(args, filter.Status)
		n++
	}
	if !filter.From.IsZero() {
		whereClauses = append(whereClauses, fmt.Sprintf("start_time >= $%d", n))
		args = append(args, filter.From)
		n++
	}
	if !filter.To.IsZero() {
		whereClauses = append(whereClauses, fmt.Sprintf("start_time <= $%d", n))
		args = append(args, filter.To)
		n++
	}
	where := ""
	if len(whereClauses) > 0 {
		where = "WHERE " + strings.Join(whereClauses, " AND ")
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM slots %s`, where)
	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, host_id, start_time, duration_minutes, status, created_at, updated_at
		FROM slots
		%s
		ORDER BY start_time ASC
		LIMIT $%d OFFSET $%d
	`, where, n, n+1)
	args = append(args, page.PageSize, page.Offset())

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	slots := make([]*domain.Slot, 0)
	for rows.Next() {
		s := &domain.Slot{}
		if err := rows.Scan(&s.ID, &s.HostID, &s.StartTime, &s.DurationMinutes, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		slots = append(slots, s)
	}
	return slots, total, rows.Err()
}

func (r *slotRepository) Delete(ctx context.Context, id string) error {
	// Only available slots may be deleted; the status guard keeps a racing
	// booking from losing its slot row.
	query := `DELETE FROM slots WHERE id = $1 AND status = $2`
	result, err := r.DB.ExecContext(ctx, query, id, domain.SlotStatusAvailable)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			// Cancelled bookings keep their slot_id, so a slot that was ever
			// booked cannot be deleted while that history remains.
			return domain.ErrSlotInUse
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows > 0 {
		return nil
	}
	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM slots WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return domain.ErrSlotAlreadyBooked
	}
	return domain.ErrSlotNotFound
}
