package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"calbook/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendBookingConfirmed mails both parties using the "booking_confirmed" template.
func (s *emailService) SendBookingConfirmed(ctx context.Context, n *domain.BookingNotification) error {
	return s.sendToBoth(ctx, "booking_confirmed", n)
}

// SendBookingCancelled mails both parties using the "booking_cancelled" template.
func (s *emailService) SendBookingCancelled(ctx context.Context, n *domain.BookingNotification) error {
	return s.sendToBoth(ctx, "booking_cancelled", n)
}

func (s *emailService) sendToBoth(ctx context.Context, templateName string, n *domain.BookingNotification) error {
	if n == nil {
		return fmt.Errorf("notification data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render(templateName, n)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", templateName, err)
	}
	var guestErr, hostErr error
	if err := s.mailer.Send(n.GuestEmail, subject, htmlBody, textBody); err != nil {
		guestErr = fmt.Errorf("failed to send %s email to guest: %w", templateName, err)
	}
	if err := s.mailer.Send(n.HostEmail, subject, htmlBody, textBody); err != nil {
		hostErr = fmt.Errorf("failed to send %s email to host: %w", templateName, err)
	}
	if guestErr != nil || hostErr != nil {
		return errors.Join(guestErr, hostErr)
	}
	log.Printf("[EMAIL] %s sent to %s and %s", templateName, n.GuestEmail, n.HostEmail)
	return nil
}
