// Package mailer sends the status-update e-mails students receive when an admin acts
// on their complaint or lost-item report.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"campus_desk_backend/internal/config"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// DefaultRecipientName is used when the student has no first name on record.
const DefaultRecipientName = "Student"

// StatusUpdate carries the template parameters of a status-update mail.
type StatusUpdate struct {
	ToName         string
	ToEmail        string
	ComplaintTitle string
	NewStatus      string
	Message        string
}

// Sender delivers status-update mails.
type Sender interface {
	SendStatusUpdate(ctx context.Context, update StatusUpdate) error
}

var statusUpdateTemplate = template.Must(template.New("status_update").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <p>Hi {{.ToName}},</p>
  <p>There is an update on <strong>{{.ComplaintTitle}}</strong>.</p>
  <p>New status: <strong>{{.NewStatus}}</strong></p>
  {{if .Message}}<p>{{.Message}}</p>{{end}}
  <p>Campus Help Desk</p>
</body>
</html>`))

// RenderStatusUpdate returns the subject and HTML body for update. An empty ToName
// becomes DefaultRecipientName.
func RenderStatusUpdate(update StatusUpdate) (string, string, error) {
	if strings.TrimSpace(update.ToName) == "" {
		update.ToName = DefaultRecipientName
	}
	var body bytes.Buffer
	if err := statusUpdateTemplate.Execute(&body, update); err != nil {
		return "", "", fmt.Errorf("render status update mail: %w", err)
	}
	subject := fmt.Sprintf("Update on %s: %s", update.ComplaintTitle, update.NewStatus)
	return subject, body.String(), nil
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender sends mail through an SMTP relay.
type SMTPSender struct {
	from   string
	dialer dialer
	logger *zap.Logger
}

var _ Sender = (*SMTPSender)(nil)

// New returns an SMTPSender when MAIL_ENABLED is true, otherwise a LogSender.
func New(cfg *config.Config, logger *zap.Logger) Sender {
	if !cfg.MailEnabled {
		logger.Info("Mail delivery disabled (MAIL_ENABLED=false); status mails will only be logged")
		return LogSender{logger: logger.Named("mailer")}
	}
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	return &SMTPSender{from: cfg.MailFrom, dialer: d, logger: logger.Named("mailer")}
}

func (s *SMTPSender) SendStatusUpdate(ctx context.Context, update StatusUpdate) error {
	if update.ToEmail == "" {
		return fmt.Errorf("status update mail has no recipient")
	}
	subject, body, err := RenderStatusUpdate(update)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", update.ToEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send status update mail to %s: %w", update.ToEmail, err)
	}
	s.logger.Debug("Status update mail sent", zap.String("to", update.ToEmail), zap.String("status", update.NewStatus))
	return nil
}

// LogSender records mails instead of sending them.
type LogSender struct {
	logger *zap.Logger
}

func (s LogSender) SendStatusUpdate(ctx context.Context, update StatusUpdate) error {
	if s.logger != nil {
		s.logger.Info("Status update mail (not sent)",
			zap.String("to", update.ToEmail),
			zap.String("title", update.ComplaintTitle),
			zap.String("status", update.NewStatus),
		)
	}
	return nil
}
