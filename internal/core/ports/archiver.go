package ports

import (
	"context"
	"time"
)

// ChatMessage is one transcript entry bound for the audit archive.
type ChatMessage struct {
	Username  string
	Role      string
	Text      string
	Timestamp time.Time
}

// MessageArchiver persists chat messages to the audit collection.
// Archiving is best-effort: failures are logged, never surfaced to the user.
type MessageArchiver interface {
	Archive(ctx context.Context, msg ChatMessage) error
}

// MessageQueue decouples the submission path from archive writes.
type MessageQueue interface {
	Enqueue(msg ChatMessage)
}
