package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Queue interface {
	// SelectPending returns up to limit unsent rows, oldest first.
	SelectPending(ctx context.Context, limit int) ([]*Queued, error)
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
	Enqueue(ctx context.Context, n *Queued) error
}
