package ports

import (
	"context"

	"github.com/evchat/chat-gateway/internal/core/domain"
)

// UserRepository is the read-only lookup interface over the credential store.
// The gateway never mutates user records.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}
