package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gomezmon2/latidos/internal/domain/notification"
)

var _ notification.Queue = (*QueueRepoImpl)(nil)

type QueueRepoImpl struct{ db *DB }

func NewQueueRepo(db *DB) *QueueRepoImpl { return &QueueRepoImpl{db: db} }

const (
	qSelectPending = `
SELECT id, user_id, type, title, body, data, sent, created_at, sent_at
FROM notification_queue
WHERE sent = FALSE
ORDER BY created_at ASC
LIMIT $1;
`

	qMarkSent = `
UPDATE notification_queue
SET sent = TRUE, sent_at = $2
WHERE id = $1;
`

	qEnqueue = `
INSERT INTO notification_queue (id, user_id, type, title, body, data)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING created_at;
`
)

func (r *QueueRepoImpl) SelectPending(ctx context.Context, limit int) ([]*notification.Queued, error) {
	if limit <= 0 {
		limit = 50
	}
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qSelectPending, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending notifications: %w", err)
	}
	defer rows.Close()

	out := make([]*notification.Queued, 0, limit)
	for rows.Next() {
		var (
			n    notification.Queued
			kind string
		)
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&kind,
			&n.Title,
			&n.Body,
			&n.Data,
			&n.Sent,
			&n.CreatedAt,
			&n.SentAt,
		); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Kind = notification.Kind(kind)
		nc := n
		out = append(out, &nc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (r *QueueRepoImpl) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	cmd, err := r.db.Pool.Exec(ctx, qMarkSent, id, at)
	if err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *QueueRepoImpl) Enqueue(ctx context.Context, n *notification.Queued) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Data == nil {
		n.Data = map[string]any{}
	}
	if err := r.db.Pool.QueryRow(ctx, qEnqueue,
		n.ID,
		n.UserID,
		string(n.Kind),
		n.Title,
		n.Body,
		n.Data,
	).Scan(&n.CreatedAt); err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}
