package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/noah-isme/trainer-booking-api/pkg/config"
)

// ErrInvalidMessage reports a message that cannot be sent as built.
var ErrInvalidMessage = errors.New("invalid message")

// Message is a single outgoing e-mail with optional text and HTML parts.
type Message struct {
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender delivers a built message through a transport.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends mail through an SMTP relay using gomail.
type SMTPMailer struct {
	from    string
	timeout time.Duration
	sender  Sender
}

const defaultSendTimeout = 10 * time.Second

// NewSMTP builds a mailer from the e-mail configuration. SendTimeout bounds the whole
// SMTP exchange, not only the wait in Send.
func NewSMTP(cfg config.EmailConfig) *SMTPMailer {
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password)
	d.SSL = cfg.SMTPSecure
	if cfg.SMTPSecure {
		d.TLSConfig = &tls.Config{ServerName: cfg.SMTPHost, MinVersion: tls.VersionTLS12}
	}
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return NewWithSender(cfg.From, timeout, &deadlineSender{dialer: d, timeout: timeout})
}

// NewWithSender builds a mailer over an arbitrary transport.
func NewWithSender(from string, timeout time.Duration, sender Sender) *SMTPMailer {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &SMTPMailer{from: from, timeout: timeout, sender: sender}
}

// Send delivers the message, giving up when ctx or the configured timeout expires first.
// The transport keeps running after Send returns, so it must bound itself; the SMTP
// sender built by NewSMTP does through its connection deadline.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	built, err := buildMessage(m.from, msg)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- m.sender.DialAndSend(built)
	}()

	wait := m.timeout
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 && d < wait {
			wait = d
		}
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return context.DeadlineExceeded
	}
}

func buildMessage(from string, m Message) (*gomail.Message, error) {
	from = strings.TrimSpace(from)
	if from == "" {
		return nil, fmt.Errorf("%w: from is required", ErrInvalidMessage)
	}
	to := cleanAddrs(m.To)
	if len(to) == 0 {
		return nil, fmt.Errorf("%w: at least one recipient is required", ErrInvalidMessage)
	}
	subject := strings.TrimSpace(m.Subject)
	if subject == "" {
		return nil, fmt.Errorf("%w: subject is required", ErrInvalidMessage)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)

	hasText := strings.TrimSpace(m.TextBody) != ""
	hasHTML := strings.TrimSpace(m.HTMLBody) != ""
	switch {
	case hasText && hasHTML:
		msg.SetBody("text/plain", m.TextBody)
		msg.AddAlternative("text/html", m.HTMLBody)
	case hasHTML:
		msg.SetBody("text/html", m.HTMLBody)
	case hasText:
		msg.SetBody("text/plain", m.TextBody)
	default:
		return nil, fmt.Errorf("%w: a text or html body is required", ErrInvalidMessage)
	}
	return msg, nil
}

func cleanAddrs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
