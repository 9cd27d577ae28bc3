// Package store is the document-store boundary. The relay only ever
// writes through it best-effort; the CRUD surface reads history back.
// Implementations may be unavailable at any time and the rest of the
// process must keep working when they are.
package store

import (
	"context"

	"github.com/havenapp/haven/internal/domain"
)

type Store interface {
	AppendMessage(ctx context.Context, w domain.Whisper) error
	AppendEcho(ctx context.Context, e domain.Echo) error
	QueryMessagesForUser(ctx context.Context, userID domain.UserID) ([]domain.Whisper, error)
	QueryEchoesRecent(ctx context.Context, limit int) ([]domain.Echo, error)
	Close()
}
