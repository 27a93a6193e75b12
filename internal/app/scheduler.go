package app

import (
	"context"
	"hrm_backend/internal/config"
	"hrm_backend/internal/service"
	"hrm_backend/pkg/logger"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const reconcileTimeout = 10 * time.Minute

// startScheduler registers the nightly cache reconciliation. It returns nil
// when the scheduler is disabled.
func startScheduler(cfg config.SchedulerConfig, reconcile *service.ReconcileService) (*cron.Cron, error) {
	if !cfg.Enabled {
		logger.Log.Info("Scheduler disabled")
		return nil, nil
	}

	c := cron.New()
	_, err := c.AddFunc(cfg.ReconcileCron, func() {
		runReconcile(reconcile)
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	logger.Log.Info("Scheduler started", zap.String("reconcile_cron", cfg.ReconcileCron))
	return c, nil
}

func runReconcile(reconcile *service.ReconcileService) {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	start := time.Now()
	report, err := reconcile.ReconcileAll(ctx)
	if err != nil {
		logger.Log.Error("Scheduled reconciliation failed", zap.Error(err))
		return
	}
	logger.Log.Info("Scheduled reconciliation finished",
		zap.Int("courses_repaired", len(report.CoursesRepaired)),
		zap.Int("trainings_repaired", len(report.TrainingsRepaired)),
		zap.Duration("took", time.Since(start)),
	)
}
