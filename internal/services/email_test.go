package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calbook/internal/domain"
)

type fakeMailer struct {
	sent []string // recipients in send order
	err  error
}

func (f *fakeMailer) Send(to, subject, html, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

type fakeRenderer struct {
	lastTemplate string
	err          error
}

func (f *fakeRenderer) Render(templateName string, data any) (string, string, string, error) {
	f.lastTemplate = templateName
	if f.err != nil {
		return "", "", "", f.err
	}
	return "subject", "<p>html</p>", "text", nil
}

func notification() *domain.BookingNotification {
	return &domain.BookingNotification{
		BookingID:       "bk-1",
		Subject:         "Sync",
		SlotStart:       time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC),
		DurationMinutes: 30,
		HostName:        "Hanna",
		HostEmail:       "hanna@x.com",
		GuestName:       "Alice",
		GuestEmail:      "alice@x.com",
	}
}

func TestEmailService_SendBookingConfirmed(t *testing.T) {
	mailer := &fakeMailer{}
	renderer := &fakeRenderer{}
	svc := NewEmailService(mailer, renderer)

	require.NoError(t, svc.SendBookingConfirmed(context.Background(), notification()))
	assert.Equal(t, "booking_confirmed", renderer.lastTemplate)
	assert.Equal(t, []string{"alice@x.com", "hanna@x.com"}, mailer.sent)
}

func TestEmailService_SendBookingCancelled(t *testing.T) {
	mailer := &fakeMailer{}
	renderer := &fakeRenderer{}
	svc := NewEmailService(mailer, renderer)

	require.NoError(t, svc.SendBookingCancelled(context.Background(), notification()))
	assert.Equal(t, "booking_cancelled", renderer.lastTemplate)
	assert.Len(t, mailer.sent, 2)
}

func TestEmailService_Errors(t *testing.T) {
	t.Run("render failure", func(t *testing.T) {
		svc := NewEmailService(&fakeMailer{}, &fakeRenderer{err: assert.AnError})
		require.Error(t, svc.SendBookingConfirmed(context.Background(), notification()))
	})

	t.Run("send failure", func(t *testing.T) {
		svc := NewEmailService(&fakeMailer{err: assert.AnError}, &fakeRenderer{})
		require.Error(t, svc.SendBookingConfirmed(context.Background(), notification()))
	})

	t.Run("nil notification", func(t *testing.T) {
		svc := NewEmailService(&fakeMailer{}, &fakeRenderer{})
		require.Error(t, svc.SendBookingConfirmed(context.Background(), nil))
	})
}
