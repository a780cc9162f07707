package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/evchat/chat-gateway/internal/core/ports"
)

const messagesCollection = "chat_messages"

// MessageRepository persists exchanged turns to an append-only audit
// collection. It never reads them back — sessions are not restored across
// process restarts.
type MessageRepository struct {
	coll *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{coll: db.Collection(messagesCollection)}
}

// Archive inserts one chat message into the audit trail.
func (r *MessageRepository) Archive(ctx context.Context, msg ports.ChatMessage) error {
	doc := bson.M{
		"username":    msg.Username,
		"role":        msg.Role,
		"text":        msg.Text,
		"timestamp":   msg.Timestamp.UTC(),
		"archived_at": time.Now().UTC(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("archive message: %w", err)
	}
	return nil
}
