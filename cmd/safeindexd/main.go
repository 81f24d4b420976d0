// Command safeindexd runs the multisig index mutation pipeline: it wires the
// durable stores, the hook registry, and the notification fan-out, then
// drains the deferred delivery queue until stopped.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/halcyon-labs/safeindex/pkg/api"
	"github.com/halcyon-labs/safeindex/pkg/cache"
	"github.com/halcyon-labs/safeindex/pkg/config"
	"github.com/halcyon-labs/safeindex/pkg/hooks"
	"github.com/halcyon-labs/safeindex/pkg/notify"
	"github.com/halcyon-labs/safeindex/pkg/observability"
	"github.com/halcyon-labs/safeindex/pkg/store"
	"github.com/halcyon-labs/safeindex/pkg/writer"
)

func main() {
	cfg := config.Load()
	log := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil && ctx.Err() == nil {
		log.Error("safeindexd failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	obs, err := observability.New(ctx, &observability.Config{
		ServiceName:    "safeindex",
		ServiceVersion: "1.0.0",
		Environment:    "production",
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     1.0,
		BatchTimeout:   5 * time.Second,
		Enabled:        cfg.TelemetryEnabled,
		Insecure:       true,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			log.Error("observability shutdown failed", "err", err)
		}
	}()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := store.Init(ctx, db); err != nil {
		return err
	}

	// Short timeouts: queue and bus calls run inline with writers and must
	// fail fast rather than hang.
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	defer func() { _ = rdb.Close() }()

	txs := store.NewPostgresTransactionStore(db)
	confs := store.NewPostgresConfirmationStore(db)
	transfers := store.NewPostgresTransferStore(db)
	statuses := store.NewPostgresStatusStore(db)
	masterCopies := store.NewPostgresMasterCopyStore(db)

	versions := cache.NewVersionCache(masterCopies.VersionForAddress)

	rules, err := notify.LoadRules(cfg.RulesPath)
	if err != nil {
		return err
	}
	queue := notify.NewRedisTaskQueue(rdb, cfg.QueueKey)
	bus := notify.NewRedisEventBus(rdb, cfg.EventChannel)

	registry := hooks.NewRegistry(log)
	hooks.NewBinder(txs, confs, log).Register(registry)
	hooks.NewNotifier(
		notify.NewDefaultBuilder(),
		notify.NewRuleClassifier(rules),
		queue,
		bus,
		cfg.NotificationDelay,
		obs.Metrics(),
		log,
	).Register(registry)
	hooks.NewHistoryRecorder(statuses, obs.Metrics(), log).Register(registry)
	hooks.NewCacheInvalidator(versions, log).Register(registry)

	w := writer.New(txs, confs, transfers, statuses, masterCopies, registry, log)

	mux := http.NewServeMux()
	api.NewServer(w, log).Routes(mux)
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	worker := notify.NewWorker(queue, &notify.LogDeliverer{Log: log}, notify.WorkerConfig{
		PollInterval: time.Second,
		BatchSize:    cfg.DeliveryBatch,
		RatePerSec:   cfg.DeliveryRate,
	}, log)

	errs := make(chan error, 2)
	go func() {
		if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
			errs <- err
		}
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- err
		}
	}()

	log.Info("safeindexd started",
		"addr", srv.Addr,
		"database", redactDSN(cfg.DatabaseURL),
		"redis", cfg.RedisAddr,
		"delay", cfg.NotificationDelay,
	)

	select {
	case <-ctx.Done():
	case err := <-errs:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(log)
	return log
}

// redactDSN strips credentials from a DSN for logging.
func redactDSN(dsn string) string {
	if at := strings.LastIndex(dsn, "@"); at != -1 {
		if scheme := strings.Index(dsn, "://"); scheme != -1 {
			return dsn[:scheme+3] + "***" + dsn[at:]
		}
	}
	return dsn
}
