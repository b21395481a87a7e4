package notification

import (
	"time"

	"github.com/google/uuid"
)

// Kind is the frozen notification vocabulary shared with the producers
// that insert rows into notification_queue.
type Kind string

const (
	KindNewMessage         Kind = "new_message"
	KindNewComment         Kind = "new_comment"
	KindNewReaction        Kind = "new_reaction"
	KindConnectionRequest  Kind = "connection_request"
	KindConnectionAccepted Kind = "connection_accepted"
)

// Queued is one row of the notification queue. Once Sent is true the
// row is never picked again.
type Queued struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Kind      Kind           `json:"type"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Data      map[string]any `json:"data"`
	Sent      bool           `json:"sent"`
	CreatedAt time.Time      `json:"created_at"`
	SentAt    *time.Time     `json:"sent_at"`
}

type Clock interface {
	Now() time.Time
}
