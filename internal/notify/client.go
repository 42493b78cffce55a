package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"calbook/internal/domain"
)

// Enqueue policy: a handful of retries with asynq's default backoff, then
// the task is dropped. Delivery is best-effort by contract.
const (
	maxRetry    = 5
	taskTimeout = 30 * time.Second
)

// Client enqueues booking notifications. Implements domain.Notifier.
type Client struct {
	client *asynq.Client
	logger *slog.Logger
}

// NewClient returns a Notifier backed by the Redis instance at redisAddr.
func NewClient(redisAddr string, logger *slog.Logger) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr}),
		logger: logger,
	}
}

func (c *Client) BookingConfirmed(ctx context.Context, n *domain.BookingNotification) error {
	return c.enqueue(ctx, TypeBookingConfirmed, n)
}

func (c *Client) BookingCancelled(ctx context.Context, n *domain.BookingNotification) error {
	return c.enqueue(ctx, TypeBookingCancelled, n)
}

func (c *Client) enqueue(ctx context.Context, typename string, n *domain.BookingNotification) error {
	task, err := newTask(typename, n)
	if err != nil {
		return err
	}
	info, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(queueName),
		asynq.MaxRetry(maxRetry),
		asynq.Timeout(taskTimeout),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", typename, err)
	}
	c.logger.DebugContext(ctx, "notification enqueued", "type", typename, "task_id", info.ID, "booking_id", n.BookingID)
	return nil
}

// Close releases the underlying Redis connection.
func (c *Client) Close() error {
	return c.client.Close()
}
