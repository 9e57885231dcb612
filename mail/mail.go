// Package mail relays contact-form messages to the site owner.
package mail

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	apperrors "github.com/shanebasham/artstore/internal/errors"
)

// Message is one contact-form submission.
type Message struct {
	Name  string `json:"user_name"`
	Email string `json:"user_email"`
	Body  string `json:"user_message"`
}

// Validate reports ErrMissingField when any field is blank.
func (m Message) Validate() error {
	if strings.TrimSpace(m.Name) == "" || strings.TrimSpace(m.Email) == "" || strings.TrimSpace(m.Body) == "" {
		return apperrors.ErrMissingField
	}
	return nil
}

func (m Message) Subject() string {
	return "New message from " + m.Name
}

// Relay delivers a contact message to the configured recipient.
type Relay interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPRelay sends messages through an SMTP account.
type SMTPRelay struct {
	sender    func() (gomail.SendCloser, error)
	recipient string
}

var _ Relay = (*SMTPRelay)(nil)

// NewSMTPRelay dials host:port with the account credentials for each message.
func NewSMTPRelay(host string, port int, account, password, recipient string) *SMTPRelay {
	dialer := gomail.NewDialer(host, port, account, password)
	return &SMTPRelay{sender: dialer.Dial, recipient: recipient}
}

// NewRelay sends through sender instead of dialing an SMTP server.
func NewRelay(sender gomail.Sender, recipient string) *SMTPRelay {
	return &SMTPRelay{
		sender:    func() (gomail.SendCloser, error) { return nopCloser{sender}, nil },
		recipient: recipient,
	}
}

type nopCloser struct {
	gomail.Sender
}

func (nopCloser) Close() error { return nil }

func (r *SMTPRelay) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", msg.Email)
	m.SetHeader("To", r.recipient)
	m.SetHeader("Subject", msg.Subject())
	m.SetBody("text/plain", msg.Body)

	s, err := r.sender()
	if err != nil {
		return fmt.Errorf("dial smtp: %w: %v", apperrors.ErrNetworkFailure, err)
	}
	defer s.Close()

	if err := gomail.Send(s, m); err != nil {
		return fmt.Errorf("send mail: %w: %v", apperrors.ErrNetworkFailure, err)
	}
	return nil
}
