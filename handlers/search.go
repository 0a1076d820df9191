package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/marcuspimenta/BESTV-sub002/models"
	metadatapkg "github.com/marcuspimenta/BESTV-sub002/services/metadata"
)

type workSearcher interface {
	SearchWorks(ctx context.Context, query string) (models.WorkPage, models.WorkPage, error)
}

var _ workSearcher = (*metadatapkg.Service)(nil)

type SearchHandler struct {
	Service   workSearcher
	Favorites favoriteDecorator
}

func NewSearchHandler(s workSearcher, favorites favoriteDecorator) *SearchHandler {
	return &SearchHandler{Service: s, Favorites: favorites}
}

// SearchResponse carries both result sets of one search pass.
type SearchResponse struct {
	Movies  models.WorkPage `json:"movies"`
	TVShows models.WorkPage `json:"tvShows"`
}

// Search runs the movie and TV searches for a single query.
// GET /api/search?q=...
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "query parameter q is required"})
		return
	}

	movies, tvShows, err := h.Service.SearchWorks(r.Context(), query)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	if h.Favorites != nil {
		if decorated, err := h.Favorites.Decorate(r.Context(), movies.Items()); err == nil {
			movies.Works = decorated
		}
		if decorated, err := h.Favorites.Decorate(r.Context(), tvShows.Items()); err == nil {
			tvShows.Works = decorated
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SearchResponse{Movies: movies, TVShows: tvShows})
}
