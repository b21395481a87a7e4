package subscription

import (
	"context"

	"github.com/google/uuid"
)

type Repo interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Subscription, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Upsert(ctx context.Context, s *Subscription) error
}

// PushSender delivers an encrypted payload to a single endpoint and
// reports the transport status code. A non-2xx status is not an error:
// classification is the caller's job. detail carries a truncated
// response body for non-2xx statuses.
type PushSender interface {
	Send(ctx context.Context, sub *Subscription, payload []byte) (status int, detail string, err error)
}
