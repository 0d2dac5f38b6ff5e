package notify

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
)

// DefaultSendTimeout bounds one SMTP conversation.
const DefaultSendTimeout = 30 * time.Second

var errNoAuth = errors.New("smtp: server doesn't support AUTH")

// DeadlineSend returns a SendFunc delivering like (*email.Email).Send over a
// connection that fails once timeout has passed, so a server that stops
// answering cannot hold the sender.
func DeadlineSend(timeout time.Duration) SendFunc {
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}

	return func(e *email.Email, addr string, auth smtp.Auth) error {
		from, err := mail.ParseAddress(e.From)
		if err != nil {
			return fmt.Errorf("invalid sender: %w", err)
		}
		rcpts := make([]string, 0, len(e.To)+len(e.Cc)+len(e.Bcc))
		for _, list := range [][]string{e.To, e.Cc, e.Bcc} {
			for _, raw := range list {
				a, err := mail.ParseAddress(raw)
				if err != nil {
					return fmt.Errorf("invalid recipient %q: %w", raw, err)
				}
				rcpts = append(rcpts, a.Address)
			}
		}
		msg, err := e.Bytes()
		if err != nil {
			return fmt.Errorf("could not encode email: %w", err)
		}

		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			return fmt.Errorf("invalid smtp address %q: %w", addr, err)
		}
		conn, err := net.DialTimeout("tcp", addr, timeout)
		if err != nil {
			return fmt.Errorf("could not dial smtp server: %w", err)
		}
		defer conn.Close()
		if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
			return fmt.Errorf("could not set smtp deadline: %w", err)
		}

		c, err := smtp.NewClient(conn, host)
		if err != nil {
			return fmt.Errorf("smtp greeting: %w", err)
		}
		defer c.Close()

		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}); err != nil {
				return fmt.Errorf("smtp starttls: %w", err)
			}
		}
		if auth != nil {
			if ok, _ := c.Extension("AUTH"); !ok {
				return errNoAuth
			}
			if err := c.Auth(auth); err != nil {
				return fmt.Errorf("smtp auth: %w", err)
			}
		}

		if err := c.Mail(from.Address); err != nil {
			return fmt.Errorf("smtp MAIL FROM: %w", err)
		}
		for _, rcpt := range rcpts {
			if err := c.Rcpt(rcpt); err != nil {
				return fmt.Errorf("smtp RCPT TO %s: %w", rcpt, err)
			}
		}
		w, err := c.Data()
		if err != nil {
			return fmt.Errorf("smtp DATA: %w", err)
		}
		if _, err := w.Write(msg); err != nil {
			return fmt.Errorf("smtp write: %w", err)
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("smtp end of data: %w", err)
		}

		return c.Quit()
	}
}
