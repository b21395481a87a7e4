package push_dispatcher

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	config "github.com/gomezmon2/latidos/internal/config/push-dispatcher"
)

type Runner struct {
	Log *zap.Logger
	UC  *Handler
	Cfg *config.Dispatch

	mCycles    prometheus.Counter
	mProcessed prometheus.Counter
	mSent      prometheus.Counter
	mFailed    prometheus.Counter
	mPruned    prometheus.Counter
	mErr       prometheus.Counter
	mCycleDur  prometheus.Histogram
}

func New(log *zap.Logger, uc *Handler, cfg *config.Dispatch) *Runner {
	return &Runner{
		Log: log,
		UC:  uc,
		Cfg: cfg,
		mCycles: promauto.NewCounter(prometheus.CounterOpts{
			Name: "push_dispatcher_cycles_total", Help: "Dispatch cycles executed",
		}),
		mProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "push_dispatcher_notifications_processed_total", Help: "Queue rows processed",
		}),
		mSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "push_dispatcher_pushes_sent_total", Help: "Push deliveries accepted by the transport",
		}),
		mFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "push_dispatcher_push_errors_total", Help: "Delivery and lookup failures",
		}),
		mPruned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "push_dispatcher_subscriptions_pruned_total", Help: "Expired subscriptions removed",
		}),
		mErr: promauto.NewCounter(prometheus.CounterOpts{
			Name: "push_dispatcher_cycle_errors_total", Help: "Cycles aborted by a batch fetch failure",
		}),
		mCycleDur: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "push_dispatcher_cycle_duration_seconds", Help: "Dispatch cycle duration",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Dispatch runs one cycle and records its metrics. Used by the ticker
// loop and by the on-demand HTTP trigger.
func (r *Runner) Dispatch(ctx context.Context) (*Summary, error) {
	start := time.Now()
	r.mCycles.Inc()

	sum, err := r.UC.DispatchCycle(ctx)
	r.mCycleDur.Observe(time.Since(start).Seconds())
	if err != nil {
		r.mErr.Inc()
		r.Log.Warn("dispatch cycle error", zap.Error(err))
		return nil, err
	}

	if sum.Processed > 0 {
		r.mProcessed.Add(float64(sum.Processed))
		r.mSent.Add(float64(sum.Sent))
		r.mPruned.Add(float64(sum.Pruned))
		if sum.Failed > 0 {
			r.mFailed.Add(float64(sum.Failed))
		}
		r.Log.Info("dispatched batch",
			zap.Int("processed", sum.Processed),
			zap.Int("sent", sum.Sent),
			zap.Int("failed", sum.Failed),
			zap.Int("pruned", sum.Pruned),
		)
	}
	return sum, nil
}

func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.Cfg.Tick)
	defer ticker.Stop()

	_, _ = r.Dispatch(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_, _ = r.Dispatch(ctx)
		}
	}
}
