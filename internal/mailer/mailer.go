package mailer

import "context"

// Message is one outbound warning email.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Notifier sends warning emails. Transport failures are the caller's to
// handle; implementations do not retry.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}
