package ports

import (
	"context"

	"github.com/evchat/chat-gateway/internal/core/domain"
)

// ChatService orchestrates one user submission at a time per session:
// append the user turn, build the outbound window, call the generation
// client, and append the model turn only if the call succeeded.
type ChatService interface {
	// Open creates (or replaces) the session for the given identity.
	Open(identity domain.SessionIdentity)

	// Submit relays one user turn. The user turn is appended to the
	// transcript before the remote call, so a failed call leaves the
	// unanswered question in place for a retry.
	Submit(ctx context.Context, username, prompt string, attachment *domain.Attachment) (string, error)

	// History returns the full transcript for display.
	History(username string) ([]domain.Turn, error)

	// Reset clears the session's transcript.
	Reset(username string) error

	// Logout destroys the session. Unknown usernames are a no-op.
	Logout(username string)
}
