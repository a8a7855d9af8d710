package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"planmate/internal/analytics"
	"planmate/internal/config"
	"planmate/internal/utils"
)

// EmailService handles email sending via SendGrid
type EmailService struct {
	fromEmail string
	fromName  string
	client    *sendgrid.Client
}

// NewEmailService creates a new email service
func NewEmailService(cfg config.EmailConfig) *EmailService {
	return &EmailService{
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		client:    sendgrid.NewSendClient(cfg.APIKey),
	}
}

// SendDigestEmail sends the weekly progress digest with the PDF attached
func (s *EmailService) SendDigestEmail(toEmail string, summary *analytics.Summary, weekStart time.Time, pdfData []byte) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail("", toEmail)
	subject := fmt.Sprintf("Your week in review - %s", utils.FormatDate(weekStart))

	message := mail.NewSingleEmail(from, subject, to, buildDigestEmailText(summary, weekStart), buildDigestEmailHTML(summary, weekStart))

	if len(pdfData) > 0 {
		attachment := mail.NewAttachment()
		attachment.SetContent(base64.StdEncoding.EncodeToString(pdfData))
		attachment.SetType("application/pdf")
		attachment.SetFilename(fmt.Sprintf("progress-%s.pdf", utils.FormatDate(weekStart)))
		attachment.SetDisposition("attachment")
		message.AddAttachment(attachment)
	}

	response, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email via SendGrid: %w", err)
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("SendGrid API error: status %d, body: %s", response.StatusCode, response.Body)
	}

	return nil
}

// buildDigestEmailHTML builds the HTML body of the digest email
func buildDigestEmailHTML(summary *analytics.Summary, weekStart time.Time) string {
	var body bytes.Buffer

	body.WriteString(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #0066cc; color: white; padding: 20px; border-radius: 8px 8px 0 0; }
        .content { background-color: #f8f9fa; padding: 20px; border-radius: 0 0 8px 8px; }
        .summary-box { background-color: white; padding: 15px; border-radius: 5px; margin: 15px 0; border-left: 4px solid #0066cc; }
        .footer { text-align: center; color: #666; font-size: 12px; margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; }
    </style>
</head>
<body>
    <div class="header">
        <h1 style="margin: 0;">Your Week in Review</h1>
        <p style="margin: 5px 0 0 0; opacity: 0.9;">Week of ` + html.EscapeString(utils.FormatDate(weekStart)) + `</p>
    </div>
    <div class="content">
        <p>Hello,</p>`)

	fmt.Fprintf(&body, `
        <div class="summary-box">
            <h3 style="margin-top: 0; color: #0066cc;">This week</h3>
            <p>You completed <strong>%d</strong> of <strong>%d</strong> tasks (%d%%).</p>
            <p>Most productive time: <strong>%s</strong>. Best day: <strong>%s</strong>.</p>
            <p>Average time per task: <strong>%s</strong>.</p>
        </div>`,
		summary.Weekly.Completed, summary.Weekly.Total, summary.Weekly.CompletionRate,
		html.EscapeString(string(summary.Insights.MostProductiveTime.Period)),
		html.EscapeString(summary.Insights.BestDay.Name),
		html.EscapeString(summary.Insights.AvgTimePerTask))

	body.WriteString(`
        <p>The full report is attached as a PDF document.</p>
        <p>Keep going,<br>PlanMate</p>
    </div>
    <div class="footer">
        <p>This is an automated email. Please do not reply.</p>
        <p>Generated on ` + summary.GeneratedAt.Format(time.RFC1123) + `</p>
    </div>
</body>
</html>`)

	return body.String()
}

// buildDigestEmailText builds the plain text body of the digest email
func buildDigestEmailText(summary *analytics.Summary, weekStart time.Time) string {
	var text bytes.Buffer

	fmt.Fprintf(&text, `Your Week in Review
Week of %s

Hello,

You completed %d of %d tasks (%d%%).
Most productive time: %s. Best day: %s.
Average time per task: %s.

The full report is attached as a PDF document.

Keep going,
PlanMate

---
This is an automated email. Please do not reply.
Generated on %s`,
		utils.FormatDate(weekStart),
		summary.Weekly.Completed, summary.Weekly.Total, summary.Weekly.CompletionRate,
		summary.Insights.MostProductiveTime.Period, summary.Insights.BestDay.Name,
		summary.Insights.AvgTimePerTask,
		summary.GeneratedAt.Format(time.RFC1123))

	return text.String()
}
