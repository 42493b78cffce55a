package domain

import (
	"context"
	"errors"
	"time"
)

// SlotStatus is the lifecycle state of a slot.
type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "available"
	SlotStatusBooked    SlotStatus = "booked"
)

// AllowedDurations lists the slot lengths the service accepts, in minutes.
var AllowedDurations = []int{15, 30, 60}

var (
	ErrSlotNotFound    = errors.New("slot not found")
	ErrInvalidDuration = errors.New("duration must be 15, 30 or 60 minutes")
	// ErrSlotAlreadyBooked is returned when the slot was not available at the
	// moment the transition was applied, including when a concurrent booking
	// committed first.
	ErrSlotAlreadyBooked = errors.New("slot already booked")
	// ErrSlotInUse is returned when deleting a slot whose booking history still
	// references it. Cancelled bookings keep their slot row, so such slots stay
	// until the bookings are removed. Same policy as hosts and guests: reject,
	// never cascade.
	ErrSlotInUse = errors.New("slot still referenced by bookings")
)

// ValidDuration reports whether minutes is an allowed slot length.
func ValidDuration(minutes int) bool {
	for _, d := range AllowedDurations {
		if d == minutes {
			return true
		}
	}
	return false
}

// Slot is a bookable time window owned by a host.
// swagger:model Slot
type Slot struct {
	ID              string     `json:"id"`
	HostID          string     `json:"host_id"`
	StartTime       time.Time  `json:"start_time"`
	DurationMinutes int        `json:"duration_minutes"`
	Status          SlotStatus `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// EndTime returns the end of the slot window.
func (s *Slot) EndTime() time.Time {
	return s.StartTime.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// SlotFilter narrows slot listings. Zero values mean "no constraint".
type SlotFilter struct {
	HostID string
	Status SlotStatus
	From   time.Time
	To     time.Time
}

// SlotRepository defines storage operations for slots.
type SlotRepository interface {
	Create(ctx context.Context, slot *Slot) error
	GetByID(ctx context.Context, id string) (*Slot, error)
	// List returns a page of slots matching the filter plus the total match count.
	List(ctx context.Context, filter SlotFilter, page PaginationParams) ([]*Slot, int, error)
	// Delete removes the slot only while it is available. Returns
	// ErrSlotAlreadyBooked if it currently has an active booking, ErrSlotInUse
	// if cancelled bookings still reference it, ErrSlotNotFound if it does not
	// exist.
	Delete(ctx context.Context, id string) error
}

// ScheduleService defines host-facing slot management.
type ScheduleService interface {
	CreateSlot(ctx context.Context, hostID string, start time.Time, durationMinutes int) (*Slot, error)
	GetSlot(ctx context.Context, id string) (*Slot, error)
	ListSlots(ctx context.Context, filter SlotFilter, page PaginationParams) ([]*Slot, int, error)
	// DeleteSlot removes an available slot owned by hostID.
	DeleteSlot(ctx context.Context, slotID, hostID string) error
	// DeleteHost removes a host account; rejected with ErrHostInUse while slots remain.
	DeleteHost(ctx context.Context, hostID string) error
	// DeleteGuest removes a guest record; rejected with ErrGuestInUse while bookings remain.
	DeleteGuest(ctx context.Context, guestID string) error
}
