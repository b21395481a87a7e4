package push_dispatcher

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/gomezmon2/latidos/internal/domain/notification"
	"github.com/gomezmon2/latidos/internal/obs"
	"github.com/gomezmon2/latidos/internal/services/push-dispatcher/repo"
)

// maxErrorSample caps the per-cycle error diagnostics carried in the
// summary; everything past the cap is still counted and logged.
const maxErrorSample = 10

type Summary struct {
	Processed int      `json:"processed"`
	Sent      int      `json:"sent"`
	Failed    int      `json:"failed"`
	Pruned    int      `json:"pruned"`
	Errors    []string `json:"errors,omitempty"`
}

func (s *Summary) addError(msg string) {
	if len(s.Errors) < maxErrorSample {
		s.Errors = append(s.Errors, msg)
	}
}

type Handler struct {
	Queue      repo.Queue
	Subs       repo.Subscriptions
	Out        repo.Sender
	Clock      notification.Clock
	Log        *zap.Logger
	BatchLimit int
}

// DispatchCycle drains one bounded batch of the notification queue.
// Only the batch fetch itself can fail the cycle; every narrower
// failure is counted, sampled and swallowed so that one broken
// endpoint or one unresolvable user never stalls the queue.
func (h *Handler) DispatchCycle(ctx context.Context) (*Summary, error) {
	limit := h.BatchLimit
	if limit <= 0 {
		limit = 50
	}

	tr := otel.Tracer("push-dispatcher")
	ctx, span := tr.Start(ctx, "dispatch.cycle",
		trace.WithAttributes(attribute.Int("batch.limit", limit)),
	)
	defer span.End()

	batch, err := h.Queue.SelectPending(ctx, limit)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("select pending: %w", err)
	}

	sum := &Summary{}
	if len(batch) == 0 {
		return sum, nil
	}
	sum.Processed = len(batch)
	span.SetAttributes(attribute.Int("batch.fetched", len(batch)))

	for _, n := range batch {
		nctx, nspan := tr.Start(ctx, "dispatch.notification",
			trace.WithAttributes(
				attribute.String("notification.id", n.ID.String()),
				attribute.String("notification.kind", string(n.Kind)),
			),
		)
		h.dispatchOne(nctx, n, sum)
		nspan.End()
	}

	span.SetAttributes(
		attribute.Int("batch.sent", sum.Sent),
		attribute.Int("batch.failed", sum.Failed),
		attribute.Int("batch.pruned", sum.Pruned),
	)
	return sum, nil
}

func (h *Handler) dispatchOne(ctx context.Context, n *notification.Queued, sum *Summary) {
	log := obs.WithTrace(ctx, h.Log).With(
		zap.String("notification_id", n.ID.String()),
		zap.String("user_id", n.UserID.String()),
		zap.String("kind", string(n.Kind)),
	)

	subs, err := h.Subs.ListByUser(ctx, n.UserID)
	if err != nil {
		// Notification-scoped: the row stays unsent and is retried
		// next cycle.
		sum.Failed++
		sum.addError(fmt.Sprintf("user %s: %v", n.UserID, err))
		log.Warn("list subscriptions", zap.Error(err))
		return
	}

	if len(subs) == 0 {
		log.Debug("no subscriptions, nothing to deliver")
		h.markSent(ctx, n, sum, log)
		return
	}

	payload, err := buildPayload(n)
	if err != nil {
		sum.Failed++
		sum.addError(fmt.Sprintf("notification %s: %v", n.ID, err))
		log.Warn("build payload", zap.Error(err))
		h.markSent(ctx, n, sum, log)
		return
	}

	for _, sub := range subs {
		slog := log.With(zap.String("endpoint", truncate(sub.Endpoint, 50)))

		status, detail, err := h.Out.Send(ctx, sub, payload)
		switch {
		case err != nil:
			sum.Failed++
			sum.addError(fmt.Sprintf("notification %s: %v", n.ID, err))
			slog.Warn("push send", zap.Error(err))

		case status == 404 || status == 410:
			if derr := h.Subs.Delete(ctx, sub.ID); derr != nil {
				slog.Warn("delete expired subscription", zap.Int("status", status), zap.Error(derr))
			} else {
				sum.Pruned++
				slog.Info("subscription expired, removed", zap.Int("status", status))
			}

		case status >= 200 && status < 300:
			sum.Sent++
			slog.Debug("push delivered", zap.Int("status", status))

		default:
			sum.Failed++
			sum.addError(fmt.Sprintf("notification %s, endpoint %s: %d %s",
				n.ID, truncate(sub.Endpoint, 30), status, truncate(detail, 100)))
			slog.Warn("push rejected", zap.Int("status", status), zap.String("detail", truncate(detail, 100)))
		}
	}

	// Marked sent after one attempt per live endpoint, win or lose.
	// Failed deliveries are not re-queued; this bounds queue growth.
	h.markSent(ctx, n, sum, log)
}

func (h *Handler) markSent(ctx context.Context, n *notification.Queued, sum *Summary, log *zap.Logger) {
	at := h.Clock.Now().UTC()
	if err := h.Queue.MarkSent(ctx, n.ID, at); err != nil {
		// The row will be re-picked next cycle; a duplicate push beats
		// a lost one.
		sum.Failed++
		sum.addError(fmt.Sprintf("mark sent %s: %v", n.ID, err))
		log.Warn("mark sent", zap.Error(err))
		return
	}
	n.Sent = true
	n.SentAt = &at
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
