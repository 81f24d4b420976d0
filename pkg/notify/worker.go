package notify

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// Deliverer executes a due delivery job. The transport (push gateway,
// webhook, ...) lives outside this core.
type Deliverer interface {
	Deliver(ctx context.Context, job Job) error
}

// LogDeliverer records deliveries without a transport. Stand-in used until a
// real push transport is wired in deployment.
type LogDeliverer struct {
	Log *slog.Logger
}

func (d *LogDeliverer) Deliver(ctx context.Context, job Job) error {
	d.Log.InfoContext(ctx, "delivering notification",
		"job_id", job.ID,
		"address", job.Address,
		"type", job.Payload.Type,
	)
	return nil
}

// Worker drains due jobs from the deferred queue and hands them to a
// Deliverer, at-least-once. Failed jobs are re-enqueued with a backoff delay.
type Worker struct {
	queue      *RedisTaskQueue
	deliver    Deliverer
	limiter    *rate.Limiter
	interval   time.Duration
	batchSize  int
	retryDelay time.Duration
	log        *slog.Logger
}

// WorkerConfig tunes the delivery loop.
type WorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
	RatePerSec   float64
	RetryDelay   time.Duration
}

func NewWorker(queue *RedisTaskQueue, deliver Deliverer, cfg WorkerConfig, log *slog.Logger) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 50
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 30 * time.Second
	}
	return &Worker{
		queue:      queue,
		deliver:    deliver,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.BatchSize),
		interval:   cfg.PollInterval,
		batchSize:  cfg.BatchSize,
		retryDelay: cfg.RetryDelay,
		log:        log,
	}
}

// Run polls until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drain(ctx); err != nil {
				w.log.ErrorContext(ctx, "delivery drain failed", "err", err)
			}
		}
	}
}

func (w *Worker) drain(ctx context.Context) error {
	jobs, err := w.queue.PopDue(ctx, time.Now(), w.batchSize)
	if err != nil {
		return err
	}

	for _, job := range jobs {
		if err := w.limiter.Wait(ctx); err != nil {
			return err
		}
		if err := w.deliver.Deliver(ctx, job); err != nil {
			w.log.WarnContext(ctx, "delivery failed, requeueing",
				"job_id", job.ID,
				"address", job.Address,
				"err", err,
			)
			// At-least-once: push the job back with a backoff delay.
			if qerr := w.queue.Enqueue(ctx, job.Address, job.Payload, w.retryDelay, job.Priority); qerr != nil {
				w.log.ErrorContext(ctx, "requeue failed, job dropped",
					"job_id", job.ID,
					"err", qerr,
				)
			}
		}
	}
	return nil
}
