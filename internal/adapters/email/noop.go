package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// NoopSender logs emails instead of delivering them. Used when no provider is configured.
type NoopSender struct {
	mu   sync.Mutex
	sent []Message
}

// NewNoopSender creates a NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send records and logs the email.
// POST: msg is appended to Sent()
func (s *NoopSender) Send(_ context.Context, msg Message) (string, error) {
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	n := len(s.sent)
	s.mu.Unlock()

	slog.Info("email_event", "event", "noop_send", "to", msg.To, "subject", msg.Subject)
	return fmt.Sprintf("noop-%d", n), nil
}

// Sent returns a copy of every message passed to Send.
func (s *NoopSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}
