package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/marcuspimenta/BESTV-sub002/models"
	favoritespkg "github.com/marcuspimenta/BESTV-sub002/services/favorites"
)

type favoriteStore interface {
	List(ctx context.Context) ([]models.Work, error)
	SetFavorite(ctx context.Context, work models.Work, favorite bool) error
	IsFavorite(ctx context.Context, work models.Work) (bool, error)
}

var _ favoriteStore = (*favoritespkg.Service)(nil)

type FavoritesHandler struct {
	Service favoriteStore
}

func NewFavoritesHandler(s favoriteStore) *FavoritesHandler {
	return &FavoritesHandler{Service: s}
}

// List returns every saved favorite, movies first.
// GET /api/favorites
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	works, err := h.Service.List(r.Context())
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"works": works})
}

// Save stores the posted work as a favorite. Saving an already saved work is
// a no-op, not an error.
// PUT /api/favorites
func (h *FavoritesHandler) Save(w http.ResponseWriter, r *http.Request) {
	var work models.Work
	if err := json.NewDecoder(r.Body).Decode(&work); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}
	if work.ID <= 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "work id is required"})
		return
	}
	work.Type = models.ParseWorkType(string(work.Type))

	if err := h.Service.SetFavorite(r.Context(), work, true); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"favorite": true})
}

// Delete removes a favorite by its (type, id) key. Removing a work that was
// never saved is a no-op.
// DELETE /api/favorites/{type}/{id}
func (h *FavoritesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil || id <= 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid work id"})
		return
	}

	work := models.Work{ID: id, Type: models.ParseWorkType(vars["type"])}
	if err := h.Service.SetFavorite(r.Context(), work, false); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"favorite": false})
}
