package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"

	"github.com/xavierca1/donor-crm/internal/usecase"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender delivers mail through an SMTP relay.
type SMTPSender struct {
	From   string
	domain string
	dialer dialer
}

func NewSMTPSender(host string, port int, user, password, from string) *SMTPSender {
	return &SMTPSender{
		From:   from,
		domain: domainOf(from),
		dialer: gomail.NewDialer(host, port, user, password),
	}
}

// Send returns the Message-ID it stamped on the message.
func (s *SMTPSender) Send(ctx context.Context, msg usecase.OutboundEmail) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if msg.To == "" {
		return "", fmt.Errorf("smtp: recipient is required")
	}

	id := fmt.Sprintf("<%s@%s>", uuid.NewString(), s.domain)

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-ID", id)
	switch {
	case msg.Text != "" && msg.HTML != "":
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	case msg.HTML != "":
		m.SetBody("text/html", msg.HTML)
	default:
		m.SetBody("text/plain", msg.Text)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return "", fmt.Errorf("smtp send: %w", err)
	}
	return id, nil
}

func domainOf(addr string) string {
	addr = strings.TrimSuffix(strings.TrimSpace(addr), ">")
	if i := strings.LastIndex(addr, "@"); i >= 0 && i < len(addr)-1 {
		return addr[i+1:]
	}
	return "localhost"
}
