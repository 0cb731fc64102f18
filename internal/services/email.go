package services

import (
	"context"
	"fmt"
	"log/slog"

	"eventrequests/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendDealDone sends the "deal_done" email to one party of a finalized request.
func (s *emailService) SendDealDone(ctx context.Context, data *domain.DealDoneEmailData) error {
	if data == nil {
		return fmt.Errorf("deal done email data is nil")
	}
	if data.Email == "" {
		return fmt.Errorf("deal done email: recipient address is empty")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("deal_done", data)
	if err != nil {
		return fmt.Errorf("failed to render deal_done template: %w", err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send deal done email: %w", err)
	}
	s.logger.Info("deal done email sent", "to", data.Email, "for_organizer", data.ForOrganizer)
	return nil
}
