package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// DealDoneEmailData holds data for the deal-done email sent to both parties.
type DealDoneEmailData struct {
	Email         string
	Name          string
	EventType     EventType
	Venue         string
	Date          string
	Budget        float64
	RequesterName string
	OrganizerName string
	ForOrganizer  bool
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendDealDone(ctx context.Context, data *DealDoneEmailData) error
}
