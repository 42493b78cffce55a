package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// EmailService defines the contract for sending domain-level emails.
// Both parties are mailed for each event.
type EmailService interface {
	SendBookingConfirmed(ctx context.Context, n *BookingNotification) error
	SendBookingCancelled(ctx context.Context, n *BookingNotification) error
}
