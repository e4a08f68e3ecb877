package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-analyzer/internal/domain/entities"
	"github.com/johnquangdev/meeting-analyzer/internal/domain/repositories"
	"github.com/johnquangdev/meeting-analyzer/internal/infrastructure/observability"
)

const reconcileBatch = 100

// Reconcile actions
const (
	ReconcileCompleted = "completed"
	ReconcileReverted  = "reverted"
)

// ReconcileReport counts the meetings repaired in one pass
type ReconcileReport struct {
	Completed int
	Reverted  int
	Skipped   int
}

// Reconciler repairs meeting statuses that disagree with the stored analyses.
// A scheduled meeting with an analysis becomes completed, a completed meeting
// without one goes back to scheduled.
type Reconciler struct {
	meetings repositories.MeetingRepository
	analyses repositories.AnalysisRepository
	locker   Locker
	logger   *zap.Logger
	metrics  *observability.Metrics
	cron     *cron.Cron
}

// NewReconciler creates a reconciler. locker may be nil.
func NewReconciler(meetings repositories.MeetingRepository, analyses repositories.AnalysisRepository, locker Locker, logger *zap.Logger, metrics *observability.Metrics) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		meetings: meetings,
		analyses: analyses,
		locker:   locker,
		logger:   logger,
		metrics:  metrics,
	}
}

// RunOnce performs a single reconciliation pass
func (r *Reconciler) RunOnce(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport

	orphaned, err := r.analyses.FindUncompletedWithAnalysis(ctx, reconcileBatch)
	if err != nil {
		return report, fmt.Errorf("list meetings with analysis: %w", err)
	}
	for _, id := range orphaned {
		ok, err := r.repair(ctx, id, entities.MeetingStatusCompleted)
		if err != nil {
			return report, err
		}
		if ok {
			report.Completed++
		} else {
			report.Skipped++
		}
	}

	stale, err := r.analyses.FindCompletedWithoutAnalysis(ctx, reconcileBatch)
	if err != nil {
		return report, fmt.Errorf("list completed meetings: %w", err)
	}
	for _, id := range stale {
		ok, err := r.repair(ctx, id, entities.MeetingStatusScheduled)
		if err != nil {
			return report, err
		}
		if ok {
			report.Reverted++
		} else {
			report.Skipped++
		}
	}

	r.metrics.AddReconciled(ReconcileCompleted, report.Completed)
	r.metrics.AddReconciled(ReconcileReverted, report.Reverted)
	return report, nil
}

// repair skips meetings that are being analyzed right now
func (r *Reconciler) repair(ctx context.Context, id uuid.UUID, status entities.MeetingStatus) (bool, error) {
	if r.locker != nil {
		unlock, ok, err := r.locker.TryLock(ctx, id.String(), time.Minute)
		if err != nil {
			return false, fmt.Errorf("lock meeting %s: %w", id, err)
		}
		if !ok {
			return false, nil
		}
		defer unlock()
	}

	if err := r.meetings.UpdateStatus(ctx, id, status); err != nil {
		return false, fmt.Errorf("set meeting %s to %s: %w", id, status, err)
	}
	r.logger.Info("🔧 Meeting status reconciled",
		zap.String("meeting_id", id.String()),
		zap.String("status", string(status)))
	return true, nil
}

// Start schedules RunOnce on the cron spec, e.g. "@every 5m"
func (r *Reconciler) Start(spec string) error {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		report, err := r.RunOnce(ctx)
		if err != nil {
			r.logger.Error("❌ Reconciliation failed", zap.Error(err))
			return
		}
		if report.Completed+report.Reverted > 0 {
			r.logger.Info("Reconciliation pass finished",
				zap.Int("completed", report.Completed),
				zap.Int("reverted", report.Reverted),
				zap.Int("skipped", report.Skipped))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid reconcile schedule %q: %w", spec, err)
	}
	r.cron = c
	c.Start()
	return nil
}

// Stop halts the schedule and waits for a running pass
func (r *Reconciler) Stop(ctx context.Context) {
	if r.cron == nil {
		return
	}
	select {
	case <-r.cron.Stop().Done():
	case <-ctx.Done():
	}
}
