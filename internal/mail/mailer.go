package mail

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer sends plain-text email over SMTP with STARTTLS. It is disabled
// unless sender credentials are configured; the router only ever asks the
// presentation layer to collect recipient/subject/body, it never sends
// directly from routed text.
type Mailer struct {
	host     string
	port     int
	sender   string
	password string
}

// NewMailer creates a mailer. Empty sender or password disables sending.
func NewMailer(host string, port int, sender, password string) *Mailer {
	return &Mailer{
		host:     host,
		port:     port,
		sender:   sender,
		password: password,
	}
}

// Enabled reports whether sender credentials are configured
func (m *Mailer) Enabled() bool {
	return m.sender != "" && m.password != ""
}

// Send delivers a plain-text message to a single recipient
func (m *Mailer) Send(to, subject, body string) error {
	if !m.Enabled() {
		return fmt.Errorf("email not configured")
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.sender)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	auth := smtp.PlainAuth("", m.sender, m.password, m.host)

	if err := smtp.SendMail(addr, auth, m.sender, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
