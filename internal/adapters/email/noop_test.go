package email

import (
	"context"
	"testing"
)

// TestNoopSender_Send tests that sends are recorded without delivery.
func TestNoopSender_Send(t *testing.T) {
	s := NewNoopSender()
	id, err := s.Send(context.Background(), Message{To: []string{"team@carevia.org"}, Subject: "New contact"})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if id != "noop-1" {
		t.Errorf("id = %s, want noop-1", id)
	}
	sent := s.Sent()
	if len(sent) != 1 || sent[0].Subject != "New contact" {
		t.Errorf("unexpected sent messages: %+v", sent)
	}
}

// TestResendSender_NoRecipients tests that empty recipient lists fail before any network call.
func TestResendSender_NoRecipients(t *testing.T) {
	s := NewResendSender("re_test_key", "Carevia <noreply@carevia.org>")
	if _, err := s.Send(context.Background(), Message{Subject: "x"}); err == nil {
		t.Error("expected error for message without recipients")
	}
}
