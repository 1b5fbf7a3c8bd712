package contact

import (
	"context"

	domain "carevia/internal/domain/contact"
)

// Store persists contact submissions.
// record.LocalStore[contact.Message] satisfies it for the local backend.
type Store interface {
	List(ctx context.Context) ([]domain.Message, error)
	Insert(ctx context.Context, m domain.Message) (domain.Message, error)
	Delete(ctx context.Context, id string) error
}
