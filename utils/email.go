package utils

import (
	"context"
	"fmt"

	"github.com/raushankrgupta/club-feedback/logger"
	"github.com/raushankrgupta/club-feedback/models"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailSender is the part of the SendGrid client AlertMailer uses.
type EmailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// AlertMailer emails an admin when a stored submission could not be mirrored to the sheet.
type AlertMailer struct {
	sender EmailSender
	from   *mail.Email
	to     *mail.Email
}

// NewAlertMailer builds a mailer backed by SendGrid.
func NewAlertMailer(apiKey, fromEmail, toEmail string) *AlertMailer {
	return NewAlertMailerWithSender(sendgrid.NewSendClient(apiKey), fromEmail, toEmail)
}

// NewAlertMailerWithSender builds a mailer around any sender.
func NewAlertMailerWithSender(sender EmailSender, fromEmail, toEmail string) *AlertMailer {
	return &AlertMailer{
		sender: sender,
		from:   mail.NewEmail("Club Feedback", fromEmail),
		to:     mail.NewEmail("Feedback Admin", toEmail),
	}
}

// SendSyncFailureAlert reports a document that is stored but missing from the sheet.
func (m *AlertMailer) SendSyncFailureAlert(ctx context.Context, entry models.FeedbackEntry, syncErr error) error {
	subject := fmt.Sprintf("Feedback %s was not synced to the sheet", entry.ID.Hex())
	text := fmt.Sprintf(
		"A feedback submission was saved but could not be appended to the spreadsheet.\n\n"+
			"Document ID: %s\nName: %s\nEnrollment Number: %s\nCreated At: %s\nError: %v\n",
		entry.ID.Hex(), entry.Name, entry.EnrollmentNo, entry.CreatedAt.Format("2006-01-02T15:04:05Z07:00"), syncErr,
	)
	message := mail.NewSingleEmail(m.from, subject, m.to, text, "")

	response, err := m.sender.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}
	if response.StatusCode >= 400 {
		logger.GetLogger().Warnw("SendGrid API error", "status", response.StatusCode, "body", response.Body)
		return fmt.Errorf("failed to send alert email, status code: %d", response.StatusCode)
	}

	logger.GetLogger().Infow("Sync failure alert sent", "document_id", entry.ID.Hex(), "status", response.StatusCode)
	return nil
}
