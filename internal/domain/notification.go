package domain

import (
	"context"
	"time"
)

// BookingNotification is the event payload emitted after a booking or
// cancellation commits. It carries everything the notification worker needs
// so it never has to read the store.
type BookingNotification struct {
	BookingID       string    `json:"booking_id"`
	Subject         string    `json:"subject"`
	SlotStart       time.Time `json:"slot_start"`
	DurationMinutes int       `json:"duration_minutes"`
	HostName        string    `json:"host_name"`
	HostEmail       string    `json:"host_email"`
	GuestName       string    `json:"guest_name"`
	GuestEmail      string    `json:"guest_email"`
}

// Notifier enqueues booking lifecycle notifications for asynchronous,
// best-effort delivery. Failures here must never roll back the transition
// that triggered them; callers log and move on.
type Notifier interface {
	BookingConfirmed(ctx context.Context, n *BookingNotification) error
	BookingCancelled(ctx context.Context, n *BookingNotification) error
}
