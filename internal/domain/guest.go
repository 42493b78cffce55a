package domain

import (
	"context"
	"errors"
	"time"
)

// ErrGuestInUse is returned when deleting a guest that is still referenced by
// a booking. Same policy as hosts: reject, never cascade.
var ErrGuestInUse = errors.New("guest still referenced by bookings")

// Guest is a person who books slots. Guests are identified by email and
// created on first booking; rebooking with the same email reuses the record.
// swagger:model Guest
type Guest struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GuestRepository defines storage operations for guests. Guest creation
// happens inside the booking transaction, so there is no standalone Create.
type GuestRepository interface {
	GetByID(ctx context.Context, id string) (*Guest, error)
	GetByEmail(ctx context.Context, email string) (*Guest, error)
	// Delete removes the guest. Returns ErrGuestInUse while any booking references it.
	Delete(ctx context.Context, id string) error
}
