package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tradebyz/screener/internal/scheduler"
)

// JobsHandler exposes scheduler state.
type JobsHandler struct {
	sched *scheduler.Scheduler
}

func NewJobsHandler(sched *scheduler.Scheduler) *JobsHandler {
	return &JobsHandler{sched: sched}
}

// Stats returns run statistics for every registered job.
func (h *JobsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.sched == nil {
		writeError(w, http.StatusServiceUnavailable, "scheduler not running")
		return
	}
	writeJSON(w, http.StatusOK, h.sched.JobStats())
}

// Trigger runs a job immediately, outside its schedule.
func (h *JobsHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	if h.sched == nil {
		writeError(w, http.StatusServiceUnavailable, "scheduler not running")
		return
	}

	name := mux.Vars(r)["name"]
	if err := h.sched.RunNow(name); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"job": name, "status": "triggered"})
}
