package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"calbook/internal/domain"
)

type bookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(db *sql.DB) domain.BookingRepository {
	return &bookingRepository{
		DB: db,
	}
}

// Book runs the whole booking as one transaction: guest upsert, slot
// compare-and-set, booking insert. The UPDATE is conditioned on
// status = 'available', so of two concurrent attempts exactly one sees
// RowsAffected = 1; the other rolls back with ErrSlotAlreadyBooked.
func (r *bookingRepository) Book(ctx context.Context, b *domain.Booking, g *domain.Guest) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin booking tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	guestQuery := `
		INSERT INTO guests (id, name, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`
	if err := tx.QueryRowContext(ctx, guestQuery,
		g.ID, g.Name, g.Email, g.CreatedAt, g.UpdatedAt,
	).Scan(&g.ID, &g.CreatedAt); err != nil {
		return fmt.Errorf("upsert guest: %w", err)
	}

	casQuery := `
		UPDATE slots SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	result, err := tx.ExecContext(ctx, casQuery,
		domain.SlotStatusBooked, b.CreatedAt, b.SlotID, domain.SlotStatusAvailable,
	)
	if err != nil {
		return fmt.Errorf("transition slot: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		// Either the slot does not exist or another booking committed first.
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM slots WHERE id = $1)`, b.SlotID).Scan(&exists); err != nil {
			return fmt.Errorf("check slot: %w", err)
		}
		if exists {
			return domain.ErrSlotAlreadyBooked
		}
		return domain.ErrSlotNotFound
	}

	b.GuestID = g.ID
	bookingQuery := `
		INSERT INTO bookings (id, slot_id, guest_id, subject, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.ExecContext(ctx, bookingQuery,
		b.ID, b.SlotID, b.GuestID, b.Subject, b.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit booking tx: %w", err)
	}
	return nil
}

// Cancel soft-deletes the active booking and frees its slot in one
// transaction, so no observer sees a cancelled booking with a booked slot.
func (r *bookingRepository) Cancel(ctx context.Context, bookingID string) (*domain.Booking, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin cancel tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	cancelQuery := `
		UPDATE bookings SET cancelled_at = NOW()
		WHERE id = $1 AND cancelled_at IS NULL
		RETURNING slot_id, guest_id, subject, created_at, cancelled_at
	`
	b := &domain.Booking{ID: bookingID}
	var cancelledAt sql.NullTime
	err = tx.QueryRowContext(ctx, cancelQuery, bookingID).Scan(
		&b.SlotID, &b.GuestID, &b.Subject, &b.CreatedAt, &cancelledAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("cancel booking: %w", err)
	}
	if cancelledAt.Valid {
		b.CancelledAt = &cancelledAt.Time
	}

	slotQuery := `UPDATE slots SET status = $1, updated_at = NOW() WHERE id = $2`
	if _, err := tx.ExecContext(ctx, slotQuery, domain.SlotStatusAvailable, b.SlotID); err != nil {
		return nil, fmt.Errorf("free slot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit cancel tx: %w", err)
	}
	return b, nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `
		SELECT id, slot_id, guest_id, subject, created_at, cancelled_at
		FROM bookings
		WHERE id = $1
	`
	b := &domain.Booking{}
	var cancelledAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.SlotID, &b.GuestID, &b.Subject, &b.CreatedAt, &cancelledAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	if cancelledAt.Valid {
		b.CancelledAt = &cancelledAt.Time
	}
	return b, nil
}

func (r *bookingRepository) GetDetails(ctx context.Context, id string) (*domain.BookingDetails, error) {
	query := `
		SELECT b.id, b.slot_id, b.guest_id, b.subject, b.created_at, b.cancelled_at,
		       s.id, s.host_id, s.start_time, s.duration_minutes, s.status, s.created_at, s.updated_at,
		       g.id, g.name, g.email, g.created_at, g.updated_at,
		       h.id, h.name, h.email, h.created_at, h.updated_at
		FROM bookings b
		JOIN slots s ON s.id = b.slot_id
		JOIN guests g ON g.id = b.guest_id
		JOIN hosts h ON h.id = s.host_id
		WHERE b.id = $1
	`
	d := &domain.BookingDetails{
		Booking: &domain.Booking{},
		Slot:    &domain.Slot{},
		Guest:   &domain.Guest{},
		Host:    &domain.Host{},
	}
	var cancelledAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&d.Booking.ID, &d.Booking.SlotID, &d.Booking.GuestID, &d.Booking.Subject, &d.Booking.CreatedAt, &cancelledAt,
		&d.Slot.ID, &d.Slot.HostID, &d.Slot.StartTime, &d.Slot.DurationMinutes, &d.Slot.Status, &d.Slot.CreatedAt, &d.Slot.UpdatedAt,
		&d.Guest.ID, &d.Guest.Name, &d.Guest.Email, &d.Guest.CreatedAt, &d.Guest.UpdatedAt,
		&d.Host.ID, &d.Host.Name, &d.Host.Email, &d.Host.CreatedAt, &d.Host.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	if cancelledAt.Valid {
		d.Booking.CancelledAt = &cancelledAt.Time
	}
	return d, nil
}
