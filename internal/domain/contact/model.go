package contact

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

// Collection is the storage name of the contact submissions collection.
const Collection = "contacts"

// Max length constants for submitted fields.
const (
	MaxNameLength    = 120
	MaxEmailLength   = 254
	MaxPhoneLength   = 40
	MaxSubjectLength = 200
	MaxMessageLength = 5000
)

// Domain errors
var (
	ErrMissingFields = errors.New("please fill in all required fields")
	ErrInvalidEmail  = errors.New("please enter a valid email address")
	ErrFieldTooLong  = errors.New("one of the fields is too long")
)

// Message is a contact form submission. Read-only once stored.
type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// RecordID returns the submission identifier.
func (m Message) RecordID() string { return m.ID }

// Normalize trims whitespace from every submitted field.
func (m Message) Normalize() Message {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Phone = strings.TrimSpace(m.Phone)
	m.Subject = strings.TrimSpace(m.Subject)
	m.Message = strings.TrimSpace(m.Message)
	return m
}

// Validate checks that all five submitted fields are present.
// PRE: m has been normalized
// POST: Returns nil if valid, error otherwise
func (m *Message) Validate() error {
	if m.Name == "" || m.Email == "" || m.Phone == "" || m.Subject == "" || m.Message == "" {
		return ErrMissingFields
	}
	if len(m.Name) > MaxNameLength || len(m.Email) > MaxEmailLength || len(m.Phone) > MaxPhoneLength ||
		len([]rune(m.Subject)) > MaxSubjectLength || len([]rune(m.Message)) > MaxMessageLength {
		return ErrFieldTooLong
	}
	if _, err := mail.ParseAddress(m.Email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}
