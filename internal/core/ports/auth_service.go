package ports

import (
	"context"

	"github.com/evchat/chat-gateway/internal/core/domain"
)

// AuthService authenticates users against the credential store.
type AuthService interface {
	// Verify checks the submitted credentials and returns the stored
	// identity. Failures are domain.ErrUserNotFound or
	// domain.ErrBadPassword; callers that face end users must collapse
	// the two into a single indistinct message.
	Verify(ctx context.Context, username, password string) (domain.SessionIdentity, error)

	// Login verifies credentials and mints a signed session token.
	Login(ctx context.Context, username, password string) (string, domain.SessionIdentity, error)
}
