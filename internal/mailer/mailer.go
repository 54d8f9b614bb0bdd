// Package mailer sends outbound email over SMTP. It knows nothing about
// queues or workers; the notifier service decides when and how often
// Send runs.
package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Email is a single outbound message. HTMLBody is optional; when set it
// becomes the primary part and Body the text/plain alternative.
type Email struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// Mailer sends email through one configured SMTP account.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// New builds a Mailer for the given SMTP endpoint. The from address is
// used as the From header on every message.
func New(host string, port int, username, password, from string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// Send delivers a single email, dialing a fresh SMTP connection.
func (m *Mailer) Send(email Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email.To...)
	msg.SetHeader("Subject", email.Subject)
	if email.HTMLBody != "" {
		msg.SetBody("text/html", email.HTMLBody)
		if email.Body != "" {
			msg.AddAlternative("text/plain", email.Body)
		}
	} else {
		msg.SetBody("text/plain", email.Body)
	}
	return m.dialer.DialAndSend(msg)
}
