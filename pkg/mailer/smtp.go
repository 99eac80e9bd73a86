package mailer

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"

	"gopkg.in/gomail.v2"
)

// deadlineSender delivers over net/smtp with a single deadline on the connection, so a
// relay that stops answering releases the send goroutine once timeout elapses.
// gomail.Dialer only bounds the TCP connect.
type deadlineSender struct {
	dialer  *gomail.Dialer
	timeout time.Duration
}

func (s *deadlineSender) DialAndSend(msgs ...*gomail.Message) error {
	addr := net.JoinHostPort(s.dialer.Host, strconv.Itoa(s.dialer.Port))
	conn, err := net.DialTimeout("tcp", addr, s.timeout)
	if err != nil {
		return err
	}
	if err := conn.SetDeadline(time.Now().Add(s.timeout)); err != nil {
		conn.Close()
		return err
	}
	if s.dialer.SSL {
		conn = tls.Client(conn, s.tlsConfig())
	}

	c, err := smtp.NewClient(conn, s.dialer.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if s.dialer.LocalName != "" {
		if err := c.Hello(s.dialer.LocalName); err != nil {
			return err
		}
	}
	if !s.dialer.SSL {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(s.tlsConfig()); err != nil {
				return err
			}
		}
	}
	if s.dialer.Username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", s.dialer.Username, s.dialer.Password, s.dialer.Host)); err != nil {
				return err
			}
		}
	}

	for _, m := range msgs {
		if err := sendOne(c, m); err != nil {
			return err
		}
	}
	return c.Quit()
}

func (s *deadlineSender) tlsConfig() *tls.Config {
	if s.dialer.TLSConfig == nil {
		return &tls.Config{ServerName: s.dialer.Host, MinVersion: tls.VersionTLS12}
	}
	return s.dialer.TLSConfig
}

func sendOne(c *smtp.Client, m *gomail.Message) error {
	from, err := envelopeAddr(m.GetHeader("From"))
	if err != nil {
		return err
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, field := range []string{"To", "Cc", "Bcc"} {
		for _, raw := range m.GetHeader(field) {
			to, err := envelopeAddr([]string{raw})
			if err != nil {
				return err
			}
			if err := c.Rcpt(to); err != nil {
				return err
			}
		}
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := m.WriteTo(w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func envelopeAddr(values []string) (string, error) {
	if len(values) == 0 {
		return "", fmt.Errorf("%w: missing address", ErrInvalidMessage)
	}
	addr, err := mail.ParseAddress(values[0])
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return addr.Address, nil
}
