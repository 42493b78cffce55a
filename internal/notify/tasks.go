// Package notify carries booking lifecycle events over an asynq (Redis)
// queue so email delivery runs outside the booking transaction, with
// bounded retries and eventual give-up handled by the queue.
package notify

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"calbook/internal/domain"
)

// Task type names. The payload for both is a domain.BookingNotification.
const (
	TypeBookingConfirmed = "notify:booking_confirmed"
	TypeBookingCancelled = "notify:booking_cancelled"
)

// queueName is the asynq queue notifications are routed to.
const queueName = "notifications"

func newTask(typename string, n *domain.BookingNotification) (*asynq.Task, error) {
	payload, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", typename, err)
	}
	return asynq.NewTask(typename, payload), nil
}
