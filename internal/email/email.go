// Package email delivers registration mail. Delivery is a collaborator
// behind a one-method interface so the registration flow can be tested
// without a mail server.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
)

// Mailer sends the out-of-band registration link to a new account.
type Mailer interface {
	SendRegistration(ctx context.Context, to, name, link string) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	Addr    string // host:port of the relay
	From    string
	AppName string
}

// NewSMTPMailer creates an SMTPMailer.
func NewSMTPMailer(addr, from, appName string) *SMTPMailer {
	return &SMTPMailer{Addr: addr, From: from, AppName: appName}
}

// SendRegistration emails the activation link.
func (m *SMTPMailer) SendRegistration(ctx context.Context, to, name, link string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s registration\r\n\r\n"+
		"Hello %s,\r\n\r\nFollow this link to complete your registration:\r\n%s\r\n",
		m.From, to, m.AppName, name, link)

	if err := smtp.SendMail(m.Addr, nil, m.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("sending registration mail to %s: %w", to, err)
	}
	return nil
}

// LogMailer logs the registration link instead of sending it. Used when no
// SMTP relay is configured (development).
type LogMailer struct{}

// SendRegistration logs the link that would have been mailed.
func (LogMailer) SendRegistration(ctx context.Context, to, name, link string) error {
	slog.Info("registration mail (not sent, no SMTP relay configured)",
		"to", to, "name", name, "link", link)
	return nil
}
