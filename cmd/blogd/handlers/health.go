package handlers

import (
	"net/http"
	"time"

	"github.com/kimhsiao/blogai/internal/scheduler"
)

// HealthHandler handles GET /api/health
func HealthHandler(now func() time.Time) http.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "ok",
			"timestamp": now().UTC().Format(time.RFC3339),
		})
	}
}

// SchedulerStatus reports the periodic generator's state.
// *scheduler.Scheduler satisfies it.
type SchedulerStatus interface {
	Status() scheduler.Status
}

// SchedulerHandler handles GET /api/scheduler
func SchedulerHandler(s SchedulerStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s == nil {
			writeErrorMessage(w, http.StatusNotFound, "scheduler disabled")
			return
		}
		writeJSON(w, http.StatusOK, s.Status())
	}
}
