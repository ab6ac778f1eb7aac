package jobs

import (
	"context"
	"time"

	"clubconnect/backend/internal/metrics"
	"clubconnect/backend/internal/store"
)

// InitializeJobs initializes and starts all background jobs
func InitializeJobs(
	ctx context.Context,
	st store.DirectoryStore,
	reg *metrics.MetricsRegistry,
) *ReconcileCountsJob {
	reconcileJob := NewReconcileCountsJob(st, reg)

	// Counter drift is rare; a sweep every six hours keeps it bounded.
	go reconcileJob.RunScheduled(ctx, 6*time.Hour)

	return reconcileJob
}
