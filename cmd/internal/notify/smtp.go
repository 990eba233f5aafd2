package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

// SMTPConfig describes the outbound relay.
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// SMTP delivers invitations through a plain-auth SMTP relay (STARTTLS is
// negotiated by net/smtp when the server offers it).
type SMTP struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTP constructs an SMTP notifier.
func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errors.New("smtp host required")
	}
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	if strings.TrimSpace(cfg.From) == "" {
		cfg.From = cfg.User
	}
	return &SMTP{cfg: cfg, send: smtp.SendMail}, nil
}

// Send mails one reveal link. The context deadline is honored only up to
// dial time; net/smtp does not support mid-flight cancellation, matching
// the at-most-once, non-cancellable delivery contract.
func (s *SMTP) Send(ctx context.Context, inv Invitation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(inv.Email) == "" {
		return errors.New("empty recipient address")
	}

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))
	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	}

	msg := buildMessage(s.cfg.From, inv)
	if err := s.send(addr, auth, s.cfg.From, []string{inv.Email}, msg); err != nil {
		return fmt.Errorf("send to %s: %w", inv.Email, err)
	}
	return nil
}

func buildMessage(from string, inv Invitation) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: Secret Santa <%s>\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", inv.Email)
	b.WriteString("Subject: Your Secret Santa Assignment\r\n")
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&b, "Hi %s!\r\n\r\n", inv.Name)
	b.WriteString("You've been assigned a Secret Santa recipient.\r\n\r\n")
	b.WriteString("Click this link to reveal your assignment:\r\n")
	fmt.Fprintf(&b, "%s\r\n\r\n", inv.RevealURL)
	b.WriteString("Keep it a secret and have fun!\r\n")
	b.WriteString("You can return to this link anytime if you forget.\r\n")
	return []byte(b.String())
}
