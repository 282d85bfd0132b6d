package worker

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fixdesk/maintenance-service/internal/config"
	"github.com/fixdesk/maintenance-service/internal/repository"
	"github.com/fixdesk/maintenance-service/internal/workflow"
)

const escalationLockKey = "maintenance:escalation:lock"

// EscalationWorker periodically raises the priority of tickets that sat at
// waiting_vendor_response past the configured threshold. Sweeps run only
// inside the business-hour window, and a redis lock keeps exactly one
// instance sweeping when several replicas run.
type EscalationWorker struct {
	engine  *workflow.Engine
	tickets repository.TicketRepository
	redis   *redis.Client
	logger  *zap.Logger
	cfg     config.EscalationConfig
	now     func() time.Time
}

// NewEscalationWorker constructs the worker.
func NewEscalationWorker(engine *workflow.Engine, tickets repository.TicketRepository, redisClient *redis.Client, logger *zap.Logger, cfg config.EscalationConfig) *EscalationWorker {
	return &EscalationWorker{
		engine:  engine,
		tickets: tickets,
		redis:   redisClient,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Run sweeps on the configured interval until the context is cancelled.
func (w *EscalationWorker) Run(ctx context.Context) {
	if !w.cfg.Enabled {
		w.logger.Info("escalation sweep disabled")
		return
	}
	ticker := time.NewTicker(w.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Sweep(ctx); err != nil {
				w.logger.Error("escalation sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep performs a single escalation pass.
func (w *EscalationWorker) Sweep(ctx context.Context) error {
	now := w.now()
	if !w.withinBusinessHours(now) {
		return nil
	}
	if !w.acquireLock(ctx) {
		return nil
	}
	defer w.releaseLock(ctx)

	cutoff := now.Add(-w.cfg.Threshold)
	stalled, err := w.tickets.ListStalledAtStep(ctx, string(workflow.StepWaitingVendorResponse), cutoff)
	if err != nil {
		return err
	}
	for i := range stalled {
		ticket := &stalled[i]
		stalledFor := now.Sub(ticket.UpdatedAt)
		if _, err := w.engine.EscalatePriority(ctx, ticket.ID, stalledFor); err != nil {
			w.logger.Error("escalation failed",
				zap.String("ticket_id", ticket.ID),
				zap.Error(err))
			continue
		}
		w.logger.Info("ticket escalated",
			zap.String("ticket_id", ticket.ID),
			zap.Duration("stalled_for", stalledFor))
	}
	return nil
}

func (w *EscalationWorker) withinBusinessHours(now time.Time) bool {
	hour := now.Hour()
	return hour >= w.cfg.BusinessHourStart && hour < w.cfg.BusinessHourEnd
}

func (w *EscalationWorker) acquireLock(ctx context.Context) bool {
	if w.redis == nil {
		return true
	}
	ok, err := w.redis.SetNX(ctx, escalationLockKey, "1", w.cfg.SweepInterval).Result()
	if err != nil {
		w.logger.Warn("escalation lock unavailable", zap.Error(err))
		return false
	}
	return ok
}

func (w *EscalationWorker) releaseLock(ctx context.Context) {
	if w.redis == nil {
		return
	}
	_ = w.redis.Del(ctx, escalationLockKey).Err()
}
