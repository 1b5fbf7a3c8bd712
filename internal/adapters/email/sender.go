package email

import "context"

// Message is an outgoing notification email.
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
	ReplyTo string // set to the visitor's address for contact notifications
}

// Sender delivers notification emails.
type Sender interface {
	Send(ctx context.Context, msg Message) (messageID string, err error)
}
