package orchestrators

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	emailAdapter "carevia/internal/adapters/email"
	"carevia/internal/domain/contact"
)

// ContactStoreForOrchestrator defines the store interface needed by contact orchestrators.
type ContactStoreForOrchestrator interface {
	List(ctx context.Context) ([]contact.Message, error)
	Insert(ctx context.Context, m contact.Message) (contact.Message, error)
}

// SubmitContactInput carries the public contact form fields.
type SubmitContactInput struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

// SubmitContactDeps holds dependencies for SubmitContact.
type SubmitContactDeps struct {
	ContactStore ContactStoreForOrchestrator
	EmailSender  emailAdapter.Sender // optional
	NotifyTo     []string            // optional; no notification when empty
	GenerateID   func() string
	Now          func() time.Time
}

var notificationTmpl = template.Must(template.New("contact").Parse(
	`<p>New message from the website contact form.</p>
<p><strong>Name:</strong> {{.Name}}<br>
<strong>Email:</strong> {{.Email}}<br>
<strong>Phone:</strong> {{.Phone}}<br>
<strong>Subject:</strong> {{.Subject}}</p>
<p style="white-space: pre-wrap">{{.Message}}</p>`))

// ExecuteSubmitContact validates and stores a contact submission, then notifies staff.
// PRE: all five input fields are provided
// POST: submission persisted; notification attempted when configured
// INVARIANT: a failed notification never fails the submission
func ExecuteSubmitContact(ctx context.Context, input SubmitContactInput, deps SubmitContactDeps) (contact.Message, error) {
	msg := contact.Message{
		ID:        deps.GenerateID(),
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Subject:   input.Subject,
		Message:   input.Message,
		CreatedAt: deps.Now().UTC(),
	}.Normalize()

	if err := msg.Validate(); err != nil {
		return contact.Message{}, fmt.Errorf("validation: %w", err)
	}

	stored, err := deps.ContactStore.Insert(ctx, msg)
	if err != nil {
		slog.Error("contact_event", "event", "insert_failed", "error", err)
		return contact.Message{}, fmt.Errorf("save contact: %w", err)
	}
	slog.Info("contact_event", "event", "submitted", "id", stored.ID)

	if deps.EmailSender != nil && len(deps.NotifyTo) > 0 {
		notifyContact(ctx, stored, deps)
	}
	return stored, nil
}

func notifyContact(ctx context.Context, m contact.Message, deps SubmitContactDeps) {
	var body bytes.Buffer
	if err := notificationTmpl.Execute(&body, m); err != nil {
		slog.Error("contact_event", "event", "notify_render_failed", "id", m.ID, "error", err)
		return
	}
	_, err := deps.EmailSender.Send(ctx, emailAdapter.Message{
		To:      deps.NotifyTo,
		Subject: "Website contact: " + m.Subject,
		HTML:    body.String(),
		Text:    fmt.Sprintf("From %s <%s>, %s\n\n%s", m.Name, m.Email, m.Phone, m.Message),
		ReplyTo: m.Email,
	})
	if err != nil {
		slog.Warn("contact_event", "event", "notify_failed", "id", m.ID, "error", err)
	}
}

// ListContactsDeps holds dependencies for ListContacts.
type ListContactsDeps struct {
	ContactStore ContactStoreForOrchestrator
}

// ExecuteListContacts returns all contact submissions newest first.
func ExecuteListContacts(ctx context.Context, deps ListContactsDeps) ([]contact.Message, error) {
	msgs, err := deps.ContactStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return msgs, nil
}
