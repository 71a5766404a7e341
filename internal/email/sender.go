// Package email sends transactional mail. The OTP issuer and the feedback
// forwarder both depend on the Sender interface; the concrete implementation
// is Postmark in deployment and a file-based sender in development.
package email

import (
	"context"
	"errors"
)

var (
	ErrFailedToSend  = errors.New("failed to send email")
	ErrInvalidParams = errors.New("invalid email params")
)

// Sender dispatches a single transactional email.
type Sender interface {
	Send(ctx context.Context, params SendParams) error
}

// SendParams describes one outbound message.
type SendParams struct {
	To       string
	ReplyTo  string
	Subject  string
	BodyHTML string
}

// Validate checks the minimum fields required for any sender implementation.
func (p SendParams) Validate() error {
	if p.To == "" || p.Subject == "" || p.BodyHTML == "" {
		return ErrInvalidParams
	}
	return nil
}
