// Package notify delivers escalation alerts to the support team by email.
// It subscribes to the event bus, so the processing pipeline never blocks
// on SMTP.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"

	"examdesk_backend/platform/config"
)

// SMTPSender delivers alert emails via a direct SMTP connection.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a sender from the email configuration, or nil when
// email is disabled.
func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	if !cfg.GetEmailEnabled() {
		return nil
	}
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
	}
}

// EscalationAlert carries everything the alert email shows.
type EscalationAlert struct {
	TicketID string
	DealID   string
	StateID  string
	Reason   string
	Alerts   []string
}

var escalationTmpl = template.Must(template.New("escalation").Parse(`
<h2>Ticket escaladé : {{.TicketID}}</h2>
<p>Le traitement automatique a été suspendu.</p>
<table>
  <tr><td><strong>Motif</strong></td><td>{{.Reason}}</td></tr>
  <tr><td><strong>État</strong></td><td>{{.StateID}}</td></tr>
  {{if .DealID}}<tr><td><strong>Dossier</strong></td><td>{{.DealID}}</td></tr>{{end}}
</table>
{{if .Alerts}}
<p><strong>Points d'attention :</strong></p>
<ul>{{range .Alerts}}<li>{{.}}</li>{{end}}</ul>
{{end}}
<p>Une intervention manuelle est nécessaire sur le ticket.</p>
`))

// SendEscalationAlert emails the alert to every recipient.
func (s *SMTPSender) SendEscalationAlert(ctx context.Context, recipients []string, alert EscalationAlert) error {
	if s == nil {
		return nil
	}

	var body bytes.Buffer
	if err := escalationTmpl.Execute(&body, alert); err != nil {
		return fmt.Errorf("render escalation email: %w", err)
	}

	subject := fmt.Sprintf("[Escalade] Ticket %s — %s", alert.TicketID, alert.Reason)
	for _, to := range recipients {
		if err := s.send(ctx, to, subject, body.String()); err != nil {
			return err
		}
	}
	return nil
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
