package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// TicketEmailData holds data for ticket confirmation and cancellation emails.
type TicketEmailData struct {
	Email      string
	TicketID   string
	EventTitle string
	EventCity  string
	EventPlace string
	StartAt    time.Time
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendTicketConfirmation(ctx context.Context, data *TicketEmailData) error
	SendTicketCancellation(ctx context.Context, data *TicketEmailData) error
}
