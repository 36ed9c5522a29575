// Package mail delivers the verification and password reset emails.
package mail

import "context"

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender submits a message for delivery. A nil error only means the message
// was accepted; failures wrap common.ErrDelivery.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
