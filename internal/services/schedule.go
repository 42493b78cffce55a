package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"calbook/internal/domain"
)

type scheduleService struct {
	slotRepo  domain.SlotRepository
	hostRepo  domain.HostRepository
	guestRepo domain.GuestRepository
}

// NewScheduleService creates a ScheduleService with the given repositories.
func NewScheduleService(
	slotRepo domain.SlotRepository,
	hostRepo domain.HostRepository,
	guestRepo domain.GuestRepository,
) domain.ScheduleService {
	return &scheduleService{
		slotRepo:  slotRepo,
		hostRepo:  hostRepo,
		guestRepo: guestRepo,
	}
}

func (s *scheduleService) CreateSlot(ctx context.Context, hostID string, start time.Time, durationMinutes int) (*domain.Slot, error) {
	if !domain.ValidDuration(durationMinutes) {
		return nil, domain.ErrInvalidDuration
	}
	if !start.After(time.Now()) {
		return nil, fmt.Errorf("%w: start_time must be in the future", domain.ErrInvalidInput)
	}
	if _, err := s.hostRepo.GetByID(ctx, hostID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get host: %w", err)
	}

	now := time.Now().UTC()
	slot := &domain.Slot{
		ID:              uuid.NewString(),
		HostID:          hostID,
		StartTime:       start.UTC(),
		DurationMinutes: durationMinutes,
		Status:          domain.SlotStatusAvailable,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.slotRepo.Create(ctx, slot); err != nil {
		return nil, fmt.Errorf("create slot: %w", err)
	}
	return slot, nil
}

func (s *scheduleService) GetSlot(ctx context.Context, id string) (*domain.Slot, error) {
	return s.slotRepo.GetByID(ctx, id)
}

func (s *scheduleService) ListSlots(ctx context.Context, filter domain.SlotFilter, page domain.PaginationParams) ([]*domain.Slot, int, error) {
	if page.Page < 1 {
		page.Page = 1
	}
	if page.PageSize < 1 {
		page.PageSize = 20
	}
	slots, total, err := s.slotRepo.List(ctx, filter, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list slots: %w", err)
	}
	return slots, total, nil
}

func (s *scheduleService) DeleteSlot(ctx context.Context, slotID, hostID string) error {
	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		return err
	}
	if slot.HostID != hostID {
		return domain.ErrForbidden
	}
	return s.slotRepo.Delete(ctx, slotID)
}

func (s *scheduleService) DeleteHost(ctx context.Context, hostID string) error {
	return s.hostRepo.Delete(ctx, hostID)
}

func (s *scheduleService) DeleteGuest(ctx context.Context, guestID string) error {
	return s.guestRepo.Delete(ctx, guestID)
}
