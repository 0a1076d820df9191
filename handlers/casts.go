package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/marcuspimenta/BESTV-sub002/models"
	metadatapkg "github.com/marcuspimenta/BESTV-sub002/services/metadata"
)

type castCatalog interface {
	CastDetails(ctx context.Context, castID int) (*models.CastDetails, error)
}

var _ castCatalog = (*metadatapkg.Service)(nil)

type CastsHandler struct {
	Service castCatalog
}

func NewCastsHandler(s castCatalog) *CastsHandler {
	return &CastsHandler{Service: s}
}

// Details returns the person joined with their movie and TV credits.
// GET /api/casts/{id}
func (h *CastsHandler) Details(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid cast id"})
		return
	}

	details, err := h.Service.CastDetails(r.Context(), id)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(details)
}
