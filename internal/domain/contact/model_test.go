package contact_test

import (
	"errors"
	"strings"
	"testing"

	"carevia/internal/domain/contact"
)

func validMessage() contact.Message {
	return contact.Message{
		Name:    "Grace",
		Email:   "grace@example.org",
		Phone:   "+27 21 555 0100",
		Subject: "Volunteering",
		Message: "I would like to help on weekends.",
	}
}

// TestMessage_Validate tests that all five fields are required.
func TestMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*contact.Message)
		wantErr error
	}{
		{"valid", func(*contact.Message) {}, nil},
		{"missing name", func(m *contact.Message) { m.Name = "" }, contact.ErrMissingFields},
		{"missing email", func(m *contact.Message) { m.Email = "" }, contact.ErrMissingFields},
		{"missing phone", func(m *contact.Message) { m.Phone = " " }, contact.ErrMissingFields},
		{"missing subject", func(m *contact.Message) { m.Subject = "" }, contact.ErrMissingFields},
		{"missing message", func(m *contact.Message) { m.Message = "\n" }, contact.ErrMissingFields},
		{"bad email", func(m *contact.Message) { m.Email = "not-an-email" }, contact.ErrInvalidEmail},
		{"message too long", func(m *contact.Message) { m.Message = strings.Repeat("m", 5001) }, contact.ErrFieldTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMessage()
			tt.mutate(&m)
			m = m.Normalize()
			if err := m.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
