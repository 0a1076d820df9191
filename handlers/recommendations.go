package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/marcuspimenta/BESTV-sub002/models"
	"github.com/marcuspimenta/BESTV-sub002/services/recommend"
	"github.com/marcuspimenta/BESTV-sub002/services/scheduler"
)

type rowSource interface {
	Rows() ([]models.RecommendationRow, error)
}

type jobRunner interface {
	RunNow(tag string) error
}

var (
	_ rowSource = (recommend.Publisher)(nil)
	_ jobRunner = (*scheduler.Service)(nil)
)

type RecommendationsHandler struct {
	Publisher rowSource
	Scheduler jobRunner
}

func NewRecommendationsHandler(publisher rowSource, sched jobRunner) *RecommendationsHandler {
	return &RecommendationsHandler{Publisher: publisher, Scheduler: sched}
}

// Rows returns the currently published recommendation rows.
// GET /api/recommendations
func (h *RecommendationsHandler) Rows(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Publisher.Rows()
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"rows": rows})
}

// Refresh kicks the scheduled publish job so the rows are rebuilt without
// waiting for the next tick.
// POST /api/recommendations/refresh
func (h *RecommendationsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.Scheduler.RunNow(recommend.Tag); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, scheduler.ErrUnknownTag):
			status = http.StatusNotFound
		case errors.Is(err, scheduler.ErrTaskRunning):
			status = http.StatusConflict
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.WriteHeader(http.StatusAccepted)
}
