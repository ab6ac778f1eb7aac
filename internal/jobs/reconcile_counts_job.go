package jobs

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"clubconnect/backend/internal/constants"
	"clubconnect/backend/internal/metrics"
	"clubconnect/backend/internal/models/entities"
	"clubconnect/backend/internal/store"
)

// ReconcileCountsJob recounts denormalized counters against their source
// rows and repairs any drift. Drift appears after partial failures, for
// example a crash between a membership insert and the memberCount bump.
type ReconcileCountsJob struct {
	store store.DirectoryStore
	reg   *metrics.MetricsRegistry

	mu        sync.Mutex
	lastRun   time.Time
	lastFixed int
	lastError string
}

// NewReconcileCountsJob creates a new reconcile job instance
func NewReconcileCountsJob(st store.DirectoryStore, reg *metrics.MetricsRegistry) *ReconcileCountsJob {
	return &ReconcileCountsJob{
		store: st,
		reg:   reg,
	}
}

// Run recounts memberCount for every club and attendeeCount for every
// event. Returns the number of counters repaired.
func (j *ReconcileCountsJob) Run(ctx context.Context) (int, error) {
	start := time.Now()
	log.Printf("[ReconcileCountsJob] Starting counter reconciliation at %s", start.Format(time.RFC3339))

	fixed := 0

	clubsFixed, err := j.reconcileClubs(ctx)
	fixed += clubsFixed
	if err != nil {
		j.recordRun(fixed, err)
		return fixed, err
	}

	eventsFixed, err := j.reconcileEvents(ctx)
	fixed += eventsFixed
	if err != nil {
		j.recordRun(fixed, err)
		return fixed, err
	}

	log.Printf("[ReconcileCountsJob] Completed reconciliation in %s. Counters repaired: %d",
		time.Since(start).Truncate(time.Millisecond), fixed)

	j.recordRun(fixed, nil)
	return fixed, nil
}

func (j *ReconcileCountsJob) reconcileClubs(ctx context.Context) (int, error) {
	docs, err := j.store.Query(ctx, constants.CollectionClubs, store.Filter{})
	if err != nil {
		return 0, fmt.Errorf("failed to list clubs: %w", err)
	}

	fixed := 0
	for _, doc := range docs {
		var club entities.Club
		if err := doc.Decode(&club); err != nil {
			log.Printf("[ReconcileCountsJob] Skipping undecodable club %s: %v", doc.ID, err)
			continue
		}

		rows, err := j.store.Query(ctx, constants.CollectionMemberships, store.Filter{
			"clubId": club.ID,
			"status": constants.MembershipActive,
		})
		if err != nil {
			return fixed, fmt.Errorf("failed to count memberships for club %s: %w", club.ID, err)
		}

		if club.MemberCount == len(rows) {
			continue
		}

		repaired, err := j.repairCounter(ctx, constants.CollectionClubs, club.ID, "memberCount", club.MemberCount, len(rows))
		if err != nil {
			return fixed, err
		}
		if repaired {
			fixed++
		}
	}
	return fixed, nil
}

func (j *ReconcileCountsJob) reconcileEvents(ctx context.Context) (int, error) {
	docs, err := j.store.Query(ctx, constants.CollectionEvents, store.Filter{})
	if err != nil {
		return 0, fmt.Errorf("failed to list events: %w", err)
	}

	fixed := 0
	for _, doc := range docs {
		var event entities.Event
		if err := doc.Decode(&event); err != nil {
			log.Printf("[ReconcileCountsJob] Skipping undecodable event %s: %v", doc.ID, err)
			continue
		}

		rows, err := j.store.Query(ctx, constants.CollectionAttendance, store.Filter{
			"eventId": event.ID,
		})
		if err != nil {
			return fixed, fmt.Errorf("failed to count attendance for event %s: %w", event.ID, err)
		}

		if event.AttendeeCount == len(rows) {
			continue
		}

		repaired, err := j.repairCounter(ctx, constants.CollectionEvents, event.ID, "attendeeCount", event.AttendeeCount, len(rows))
		if err != nil {
			return fixed, err
		}
		if repaired {
			fixed++
		}
	}
	return fixed, nil
}

// repairCounter applies the recount as a relative adjustment. Joins and
// attendance marks bump counters without holding any per-document lock,
// so an absolute write could erase an increment that landed after the
// recount. Adding only the observed drift keeps a concurrent bump in the
// final value.
func (j *ReconcileCountsJob) repairCounter(ctx context.Context, collection, id, field string, observed, expected int) (bool, error) {
	newValue, err := j.store.IncrementField(ctx, collection, id, field, expected-observed)
	if err != nil {
		if err == store.ErrNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to repair %s on %s/%s: %w", field, collection, id, err)
	}

	log.Printf("[ReconcileCountsJob] Repaired %s on %s/%s: %d -> %d", field, collection, id, observed, newValue)
	j.reg.CounterReconciledTotal.WithLabelValues(collection).Inc()
	return true, nil
}

// RunScheduled runs the reconciliation loop until ctx is cancelled.
func (j *ReconcileCountsJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if _, err := j.Run(ctx); err != nil {
		log.Printf("[ReconcileCountsJob] Error in initial run: %v", err)
	}

	for {
		select {
		case <-ticker.C:
			if _, err := j.Run(ctx); err != nil {
				log.Printf("[ReconcileCountsJob] Error in scheduled run: %v", err)
			}
		case <-ctx.Done():
			log.Printf("[ReconcileCountsJob] Scheduled reconciliation stopped")
			return
		}
	}
}

func (j *ReconcileCountsJob) recordRun(fixed int, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.lastRun = time.Now()
	j.lastFixed = fixed
	j.lastError = ""
	if err != nil {
		j.lastError = err.Error()
	}
}

// Status reports the outcome of the most recent run.
func (j *ReconcileCountsJob) Status() map[string]any {
	j.mu.Lock()
	defer j.mu.Unlock()

	status := map[string]any{
		"lastRun":          j.lastRun,
		"countersRepaired": j.lastFixed,
	}
	if j.lastError != "" {
		status["lastError"] = j.lastError
	}
	return status
}
