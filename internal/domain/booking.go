package domain

import (
	"context"
	"errors"
	"time"
)

var ErrBookingNotFound = errors.New("booking not found")

// Role identifies who initiated a cancellation.
type Role string

const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
)

// Booking is an active reservation of a slot by a guest. A cancelled booking
// keeps its row with CancelledAt set; "active" means CancelledAt is nil.
// swagger:model Booking
type Booking struct {
	ID          string     `json:"id"`
	SlotID      string     `json:"slot_id"`
	GuestID     string     `json:"guest_id"`
	Subject     string     `json:"subject"`
	CreatedAt   time.Time  `json:"created_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

// Active reports whether the booking has not been cancelled.
func (b *Booking) Active() bool {
	return b.CancelledAt == nil
}

// BookingDetails bundles a booking with the slot, guest, and host it references.
type BookingDetails struct {
	Booking *Booking `json:"booking"`
	Slot    *Slot    `json:"slot"`
	Guest   *Guest   `json:"guest"`
	Host    *Host    `json:"host"`
}

// BookSlotInput carries everything needed to book a slot.
type BookSlotInput struct {
	SlotID     string
	GuestName  string
	GuestEmail string
	Subject    string
}

// CancelRequest identifies who is asking for a cancellation. HostID is set
// for host-initiated cancels, GuestEmail for guest-initiated ones; the
// service only checks that the requester matches the booking.
type CancelRequest struct {
	Role       Role
	HostID     string
	GuestEmail string
}

// BookingRepository owns the transactional state transitions on bookings.
//
// Book and Cancel each run as one atomic unit against the store: the slot
// status compare-and-set and the booking row change either both commit or
// neither does. Losing a concurrent race surfaces as ErrSlotAlreadyBooked.
type BookingRepository interface {
	// Book atomically creates guest (by email, reusing an existing record),
	// transitions the slot available -> booked, and inserts the booking.
	// The caller provides booking.ID, booking.SlotID, booking.Subject and
	// guest.Name/guest.Email; remaining fields are filled in on success.
	Book(ctx context.Context, booking *Booking, guest *Guest) error
	// Cancel atomically soft-deletes the active booking and transitions its
	// slot back to available. Returns the cancelled booking, or
	// ErrBookingNotFound if it does not exist or was already cancelled.
	Cancel(ctx context.Context, bookingID string) (*Booking, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	// GetDetails returns the booking joined with its slot, guest, and host.
	// Cancelled bookings are included.
	GetDetails(ctx context.Context, id string) (*BookingDetails, error)
}

// BookingService is the booking consistency manager: it serializes state
// transitions on a slot so that at most one active booking references it.
type BookingService interface {
	Book(ctx context.Context, in BookSlotInput) (*Booking, error)
	Cancel(ctx context.Context, bookingID string, req CancelRequest) error
	Get(ctx context.Context, id string) (*BookingDetails, error)
}
