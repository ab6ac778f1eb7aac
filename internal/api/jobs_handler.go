package api

import (
	"log"
	"net/http"
	"time"

	"clubconnect/backend/internal/auth"
	"clubconnect/backend/internal/common"
	"clubconnect/backend/internal/jobs"
)

// JobsHandler handles manual job triggering endpoints
type JobsHandler struct {
	reconcileJob *jobs.ReconcileCountsJob
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(reconcileJob *jobs.ReconcileCountsJob) *JobsHandler {
	return &JobsHandler{
		reconcileJob: reconcileJob,
	}
}

// TriggerReconcile manually triggers the counter reconciliation job.
func (h *JobsHandler) TriggerReconcile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetUserClaims(r.Context())
		log.Printf("[JobsHandler] Counter reconciliation manually triggered by user %s", claims.UserID())

		fixed, err := h.reconcileJob.Run(r.Context())
		if err != nil {
			log.Printf("[JobsHandler] Error running reconciliation: %v", err)
			common.RespondError(w, initTime, "Internal", "Reconciliation failed", http.StatusInternalServerError)
			return
		}

		common.RespondSuccess(w, initTime, "Reconciliation complete", map[string]any{
			"countersRepaired": fixed,
		})
	}
}

// GetJobStatus returns the status of the background jobs.
func (h *JobsHandler) GetJobStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		common.RespondSuccess(w, initTime, "Job status", map[string]any{
			"reconcileCounts": h.reconcileJob.Status(),
		})
	}
}
