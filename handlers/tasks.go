package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/marcuspimenta/BESTV-sub002/services/scheduler"
)

type jobLister interface {
	Jobs() []scheduler.JobStatus
}

var _ jobLister = (*scheduler.Service)(nil)

// TasksHandler exposes the scheduler's job table for monitoring.
type TasksHandler struct {
	Scheduler jobLister
}

func NewTasksHandler(sched jobLister) *TasksHandler {
	return &TasksHandler{Scheduler: sched}
}

// ListTasks returns every scheduled job with its last run status.
// GET /api/tasks
func (h *TasksHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"tasks": h.Scheduler.Jobs(),
	})
}
