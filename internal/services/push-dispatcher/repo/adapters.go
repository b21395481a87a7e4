package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gomezmon2/latidos/internal/domain/notification"
	"github.com/gomezmon2/latidos/internal/domain/subscription"
)

type Queue struct{ R notification.Queue }
type Subscriptions struct{ R subscription.Repo }
type Sender struct{ S subscription.PushSender }

func (a Queue) SelectPending(ctx context.Context, limit int) ([]*notification.Queued, error) {
	return a.R.SelectPending(ctx, limit)
}

func (a Queue) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	return a.R.MarkSent(ctx, id, at)
}

func (a Subscriptions) ListByUser(ctx context.Context, userID uuid.UUID) ([]*subscription.Subscription, error) {
	return a.R.ListByUser(ctx, userID)
}

func (a Subscriptions) Delete(ctx context.Context, id uuid.UUID) error {
	return a.R.Delete(ctx, id)
}

func (a Sender) Send(ctx context.Context, sub *subscription.Subscription, payload []byte) (int, string, error) {
	return a.S.Send(ctx, sub, payload)
}
