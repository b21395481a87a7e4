package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gomezmon2/latidos/internal/domain/subscription"
)

var _ subscription.Repo = (*SubscriptionRepoImpl)(nil)

type SubscriptionRepoImpl struct{ db *DB }

func NewSubscriptionRepo(db *DB) *SubscriptionRepoImpl { return &SubscriptionRepoImpl{db: db} }

const (
	qSubsByUser = `
SELECT id, user_id, endpoint, p256dh, auth, user_agent, created_at, updated_at
FROM push_subscriptions
WHERE user_id = $1
ORDER BY created_at;
`

	qSubDelete = `DELETE FROM push_subscriptions WHERE id = $1;`

	qSubUpsert = `
INSERT INTO push_subscriptions (id, user_id, endpoint, p256dh, auth, user_agent)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id, endpoint) DO UPDATE
SET p256dh = EXCLUDED.p256dh,
    auth = EXCLUDED.auth,
    user_agent = EXCLUDED.user_agent,
    updated_at = now()
RETURNING id, created_at, updated_at;
`
)

func (r *SubscriptionRepoImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]*subscription.Subscription, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qSubsByUser, userID)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	defer rows.Close()

	var out []*subscription.Subscription
	for rows.Next() {
		var s subscription.Subscription
		if err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.Endpoint,
			&s.P256dh,
			&s.Auth,
			&s.UserAgent,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		sc := s
		out = append(out, &sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (r *SubscriptionRepoImpl) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	cmd, err := r.db.Pool.Exec(ctx, qSubDelete, id)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SubscriptionRepoImpl) Upsert(ctx context.Context, s *subscription.Subscription) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if err := r.db.Pool.QueryRow(ctx, qSubUpsert,
		s.ID,
		s.UserID,
		s.Endpoint,
		s.P256dh,
		s.Auth,
		s.UserAgent,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}
