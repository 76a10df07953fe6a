// Package notify delivers transactional email notifications. Delivery is
// best-effort by contract: the connection workflow never depends on it.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/lifeofpease/matchmaking-api/internal/core/ports"
)

// Config captures SMTP transport settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends notifications over plain SMTP.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
}

func NewSMTPMailer(cfg Config) *SMTPMailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPMailer{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth: auth,
		from: cfg.From,
	}
}

// Send delivers a single notification. The context deadline is not honoured
// mid-dial by net/smtp; callers run Send off the request path.
func (m *SMTPMailer) Send(ctx context.Context, n ports.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", n.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", n.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	if n.Name != "" {
		fmt.Fprintf(&b, "Hi %s,\r\n\r\n", n.Name)
	}
	b.WriteString(n.Body)
	b.WriteString("\r\n")

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{n.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
