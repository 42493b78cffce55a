package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"calbook/internal/domain"
)

// Worker consumes notification tasks and sends the emails. Task failures are
// retried by asynq up to the enqueue-time MaxRetry, then dropped; a dropped
// notification never affects the booking that triggered it.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewWorker returns a Worker consuming from the Redis instance at redisAddr.
func NewWorker(redisAddr string, emails domain.EmailService, logger *slog.Logger) *Worker {
	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr},
		asynq.Config{
			Concurrency: 5,
			Queues:      map[string]int{queueName: 1},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.WarnContext(ctx, "notification task failed", "type", task.Type(), "err", err)
			}),
		},
	)

	h := &taskHandler{emails: emails, logger: logger}
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeBookingConfirmed, h.handleBookingConfirmed)
	mux.HandleFunc(TypeBookingCancelled, h.handleBookingCancelled)

	return &Worker{server: server, mux: mux}
}

// Run starts the worker and blocks until Shutdown is called.
func (w *Worker) Run() error {
	return w.server.Run(w.mux)
}

// Shutdown stops the worker, waiting for in-flight tasks.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

type taskHandler struct {
	emails domain.EmailService
	logger *slog.Logger
}

func (h *taskHandler) handleBookingConfirmed(ctx context.Context, t *asynq.Task) error {
	n, err := decodePayload(t)
	if err != nil {
		return err
	}
	if err := h.emails.SendBookingConfirmed(ctx, n); err != nil {
		return fmt.Errorf("send booking confirmed: %w", err)
	}
	h.logger.InfoContext(ctx, "booking confirmation sent", "booking_id", n.BookingID)
	return nil
}

func (h *taskHandler) handleBookingCancelled(ctx context.Context, t *asynq.Task) error {
	n, err := decodePayload(t)
	if err != nil {
		return err
	}
	if err := h.emails.SendBookingCancelled(ctx, n); err != nil {
		return fmt.Errorf("send booking cancelled: %w", err)
	}
	h.logger.InfoContext(ctx, "booking cancellation sent", "booking_id", n.BookingID)
	return nil
}

func decodePayload(t *asynq.Task) (*domain.BookingNotification, error) {
	var n domain.BookingNotification
	if err := json.Unmarshal(t.Payload(), &n); err != nil {
		// A payload we cannot parse will never parse; don't retry.
		return nil, fmt.Errorf("unmarshal %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	return &n, nil
}
