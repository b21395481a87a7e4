package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	config "github.com/gomezmon2/latidos/internal/config/push-dispatcher"
	"github.com/gomezmon2/latidos/internal/obs"
	pg "github.com/gomezmon2/latidos/internal/repository/postgres"
	dispatcher "github.com/gomezmon2/latidos/internal/services/push-dispatcher"
	"github.com/gomezmon2/latidos/internal/services/push-dispatcher/repo"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func main() {
	// init
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/push-dispatcher.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	// logger
	l, err := obs.NewLogger(cfg.Log.AsLoggerConfig())
	if err != nil {
		log.Fatal(err)
	}
	l.Info("starting push-dispatcher",
		zap.Duration("tick", cfg.Dispatch.Tick),
		zap.Int("batch_limit", cfg.Dispatch.BatchLimit),
		zap.String("metrics_addr", cfg.Dispatch.MetricsAddr),
		zap.String("vapid_subject", cfg.Push.Subject),
	)

	// otel
	otelCloser, err := obs.SetupOTel(ctx, cfg.OTEL.AsOTELConfig())
	if err != nil {
		l.Warn("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	// db
	var db *pg.DB
	err = backoff.Retry(func() error {
		var derr error
		db, derr = pg.New(ctx, cfg.DB)
		return derr
	}, backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 10), ctx))
	if err != nil {
		l.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()
	l.Info("db connected")

	// wiring
	queueRepo := pg.NewQueueRepo(db)
	subRepo := pg.NewSubscriptionRepo(db)
	sender := dispatcher.NewSender(cfg.Push).WithLogger(l)

	uc := &dispatcher.Handler{
		Queue:      repo.Queue{R: queueRepo},
		Subs:       repo.Subscriptions{R: subRepo},
		Out:        repo.Sender{S: sender},
		Clock:      systemClock{},
		Log:        l,
		BatchLimit: cfg.Dispatch.BatchLimit,
	}
	runner := dispatcher.New(l, uc, &cfg.Dispatch)

	// metrics + on-demand trigger
	ms := obs.BootstrapMetricsServer(cfg.Dispatch.MetricsAddr, func(ctx context.Context) error {
		hctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
		return db.Pool.Ping(hctx)
	}, func(mux *http.ServeMux) {
		mux.Handle("/dispatch", dispatcher.NewTriggerHandler(runner, l))
	}, l)

	// run
	errCh := make(chan error, 1)
	go func() { errCh <- runner.Run(ctx) }()

	l.Info("push-dispatcher started")

	select {
	case <-ctx.Done():
		l.Info("shutdown signal")
	case err = <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			l.Error("runner error", zap.Error(err))
		}
	}

	// graceful shutdown
	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
}
