package ports

import (
	"context"

	"github.com/evchat/chat-gateway/internal/core/domain"
)

// GenerationClient issues one multimodal generation call against the remote
// service. history carries the bounded recent transcript window (without the
// new prompt); prompt and the optional attachment form the new user message.
//
// A returned error is always terminal for the call: either
// domain.ErrMissingAPIKey, domain.ErrConnection, *domain.HTTPStatusError, or
// *domain.ExhaustedError once the retry budget is spent.
type GenerationClient interface {
	Generate(ctx context.Context, history []domain.Turn, prompt string, attachment *domain.Attachment) (string, error)
}
