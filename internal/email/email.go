// Package email wraps the transactional email channel. Dispatch is
// synchronous: a send either returns the provider message id or an error, and
// callers must treat the two as mutually exclusive outcomes.
package email

import "context"

// Message is a single-recipient transactional email with both HTML and plain
// text bodies.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Dispatcher is the port for the email delivery provider.
type Dispatcher interface {
	Send(ctx context.Context, msg Message) (string, error)
}
