package services

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"calbook/internal/domain"
)

// maxStoreAttempts bounds retries of a transaction that failed transiently
// (deadlock, serialization conflict, dropped connection).
const maxStoreAttempts = 3

type bookingService struct {
	bookingRepo domain.BookingRepository
	notifier    domain.Notifier
	logger      *slog.Logger
}

// NewBookingService creates the booking consistency manager. The notifier is
// best-effort: enqueue failures are logged, never surfaced, because the state
// transition has already committed by the time notifications happen.
func NewBookingService(bookingRepo domain.BookingRepository, notifier domain.Notifier, logger *slog.Logger) domain.BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		notifier:    notifier,
		logger:      logger,
	}
}

func (s *bookingService) Book(ctx context.Context, in domain.BookSlotInput) (*domain.Booking, error) {
	name := strings.TrimSpace(in.GuestName)
	email := strings.ToLower(strings.TrimSpace(in.GuestEmail))
	subject := strings.TrimSpace(in.Subject)
	if in.SlotID == "" || name == "" || email == "" || subject == "" {
		return nil, fmt.Errorf("%w: slot_id, guest_name, guest_email and subject are required", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	booking := &domain.Booking{
		ID:        uuid.NewString(),
		SlotID:    in.SlotID,
		Subject:   subject,
		CreatedAt: now,
	}
	guest := &domain.Guest{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.withRetry(ctx, "book slot", func() error {
		return s.bookingRepo.Book(ctx, booking, guest)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, booking.ID, s.notifier.BookingConfirmed)
	return booking, nil
}

func (s *bookingService) Cancel(ctx context.Context, bookingID string, req domain.CancelRequest) error {
	details, err := s.bookingRepo.GetDetails(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) {
			return domain.ErrBookingNotFound
		}
		return fmt.Errorf("get booking details: %w", err)
	}
	if !details.Booking.Active() {
		return domain.ErrBookingNotFound
	}

	// Authorization proper lives in the request layer; the manager only
	// checks that the requester matches the booking it names.
	switch req.Role {
	case domain.RoleHost:
		if req.HostID != details.Host.ID {
			return domain.ErrForbidden
		}
	case domain.RoleGuest:
		if !strings.EqualFold(req.GuestEmail, details.Guest.Email) {
			return domain.ErrForbidden
		}
	default:
		return fmt.Errorf("%w: unknown requester role %q", domain.ErrInvalidInput, req.Role)
	}

	err = s.withRetry(ctx, "cancel booking", func() error {
		_, err := s.bookingRepo.Cancel(ctx, bookingID)
		return err
	})
	if err != nil {
		return err
	}

	s.notify(ctx, bookingID, s.notifier.BookingCancelled)
	return nil
}

func (s *bookingService) Get(ctx context.Context, id string) (*domain.BookingDetails, error) {
	return s.bookingRepo.GetDetails(ctx, id)
}

// notify builds the event payload and hands it to the notifier. Runs after
// commit only; any failure is logged and swallowed.
func (s *bookingService) notify(ctx context.Context, bookingID string, emit func(context.Context, *domain.BookingNotification) error) {
	details, err := s.bookingRepo.GetDetails(ctx, bookingID)
	if err != nil {
		s.logger.WarnContext(ctx, "notification skipped, could not load booking details", "booking_id", bookingID, "err", err)
		return
	}
	n := &domain.BookingNotification{
		BookingID:       details.Booking.ID,
		Subject:         details.Booking.Subject,
		SlotStart:       details.Slot.StartTime,
		DurationMinutes: details.Slot.DurationMinutes,
		HostName:        details.Host.Name,
		HostEmail:       details.Host.Email,
		GuestName:       details.Guest.Name,
		GuestEmail:      details.Guest.Email,
	}
	if err := emit(ctx, n); err != nil {
		s.logger.WarnContext(ctx, "failed to enqueue booking notification", "booking_id", bookingID, "err", err)
	}
}

func (s *bookingService) withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxStoreAttempts; attempt++ {
		err = fn()
		if err == nil || !isTransientStoreErr(err) {
			return err
		}
		s.logger.WarnContext(ctx, "transient store failure", "op", op, "attempt", attempt, "err", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 50 * time.Millisecond):
		}
	}
	return fmt.Errorf("%w: %s failed after %d attempts: %v", domain.ErrStoreUnavailable, op, maxStoreAttempts, err)
}

// isTransientStoreErr reports whether err is worth retrying: serialization
// failures, deadlocks, and connection-level errors.
func isTransientStoreErr(err error) bool {
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return true
		}
		if pqErr.Code.Class() == "08" { // connection exceptions
			return true
		}
	}
	return false
}
