package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"homeserve/config"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeEarningsReconcile = "earnings:reconcile"

// ReconcilePayload bounds one reconciliation run.
type ReconcilePayload struct {
	Limit int `json:"limit"`
}

// Reconciler resumes unpaid completed bookings.
type Reconciler interface {
	Reconcile(ctx context.Context, limit int) (int, error)
}

// NewReconcileTask builds an earnings reconciliation task.
func NewReconcileTask(limit int) (*asynq.Task, error) {
	payload, err := json.Marshal(ReconcilePayload{Limit: limit})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeEarningsReconcile, payload, asynq.MaxRetry(3), asynq.Timeout(5*time.Minute)), nil
}

func handleReconcileTask(r Reconciler, defaultLimit int, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p ReconcilePayload
		if len(task.Payload()) > 0 {
			if err := json.Unmarshal(task.Payload(), &p); err != nil {
				logger.Error("Invalid reconcile payload", zap.Error(err))
				return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
			}
		}
		if p.Limit <= 0 {
			p.Limit = defaultLimit
		}

		resumed, err := r.Reconcile(ctx, p.Limit)
		if err != nil {
			logger.Error("Earnings reconciliation failed", zap.Error(err))
			return err
		}
		logger.Info("Earnings reconciliation ran", zap.Int("resumed", resumed), zap.Int("limit", p.Limit))
		return nil
	}
}

// EarningsWorker runs the reconciliation handler and, optionally, its periodic schedule.
type EarningsWorker struct {
	srv       *asynq.Server
	scheduler *asynq.Scheduler
	logger    *zap.Logger
}

func redisOpt(cfg config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	}
}

// StartEarningsWorker runs the async worker in the background.
func StartEarningsWorker(cfg config.Config, r Reconciler, logger *zap.Logger) *EarningsWorker {
	opts := redisOpt(cfg)
	w := &EarningsWorker{
		srv: asynq.NewServer(opts, asynq.Config{
			Concurrency: 2,
			Queues:      map[string]int{"default": 1},
		}),
		logger: logger,
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeEarningsReconcile, handleReconcileTask(r, cfg.ReconcileBatch, logger))

	go func() {
		const maxAttempts = 5
		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := w.srv.Start(mux)
			if err == nil {
				logger.Info("Earnings worker started")
				return
			}
			logger.Warn("Earnings worker failed to start",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
		logger.Error("Earnings worker gave up; reconciliation is only available through the admin endpoint")
	}()

	if cfg.ReconcileEnabled {
		w.scheduler = asynq.NewScheduler(opts, &asynq.SchedulerOpts{Location: time.UTC})
		task, err := NewReconcileTask(cfg.ReconcileBatch)
		if err == nil {
			_, err = w.scheduler.Register(cfg.ReconcileSpec, task, asynq.Unique(time.Minute))
		}
		if err == nil {
			err = w.scheduler.Start()
		}
		if err != nil {
			logger.Error("Failed to schedule earnings reconciliation", zap.String("spec", cfg.ReconcileSpec), zap.Error(err))
			w.scheduler = nil
		} else {
			logger.Info("Earnings reconciliation scheduled", zap.String("spec", cfg.ReconcileSpec))
		}
	}
	return w
}

// Shutdown stops the scheduler and drains the worker.
func (w *EarningsWorker) Shutdown() {
	if w == nil {
		return
	}
	if w.scheduler != nil {
		w.scheduler.Shutdown()
	}
	w.srv.Shutdown()
	w.logger.Info("Earnings worker stopped")
}
