package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/Lucifer21-lab/synchro-ai-sub000/config"
)

// Mailer sends transactional HTML email over SMTP via gomail. Callers treat
// failures as non-fatal; workflow operations never abort over email.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

var bodyTemplate = template.Must(template.New("body").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .content { margin: 20px 0; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>{{.Subject}}</h2>
    </div>
    <div class="content">
        <p>{{.Message}}</p>
        <p>Open Synchro-AI to respond.</p>
    </div>
    <div class="footer">
        <p>© {{.Year}} Synchro-AI. All rights reserved.</p>
    </div>
</body>
</html>`))

func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// Send renders the shared body template and delivers the message.
func (m *Mailer) Send(to, subject, message string) error {
	var body bytes.Buffer
	data := struct {
		Subject string
		Message string
		Year    int
	}{Subject: subject, Message: message, Year: time.Now().Year()}
	if err := bodyTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render email body: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
