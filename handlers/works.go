package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/marcuspimenta/BESTV-sub002/models"
	metadatapkg "github.com/marcuspimenta/BESTV-sub002/services/metadata"
)

type workCatalog interface {
	Works(ctx context.Context, workType models.WorkType, category string, page int) (models.WorkPage, error)
	Genres(ctx context.Context, workType models.WorkType) ([]models.Genre, error)
	WorksByGenre(ctx context.Context, workType models.WorkType, genreID, page int) (models.WorkPage, error)
	SimilarWorks(ctx context.Context, workType models.WorkType, id, page int) (models.WorkPage, error)
	WorkDetails(ctx context.Context, workType models.WorkType, id int) (*models.WorkDetails, error)
}

var _ workCatalog = (*metadatapkg.Service)(nil)

// favoriteDecorator stamps the favorite flag onto works before they go out.
type favoriteDecorator interface {
	Decorate(ctx context.Context, works []models.Work) ([]models.Work, error)
	IsFavorite(ctx context.Context, work models.Work) (bool, error)
}

type WorksHandler struct {
	Service   workCatalog
	Favorites favoriteDecorator
}

func NewWorksHandler(s workCatalog, favorites favoriteDecorator) *WorksHandler {
	return &WorksHandler{Service: s, Favorites: favorites}
}

// List returns one page of a browse category.
// GET /api/works?type=MOVIE&category=popular&page=1
func (h *WorksHandler) List(w http.ResponseWriter, r *http.Request) {
	workType := models.ParseWorkType(strings.TrimSpace(r.URL.Query().Get("type")))
	category := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("category")))
	page := parsePage(r)

	result, err := h.Service.Works(r.Context(), workType, category, page)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, metadatapkg.ErrUnknownCategory) {
			status = http.StatusBadRequest
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	result.Works = h.decorate(r.Context(), result.Items())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// Details returns the full detail aggregate for one work.
// GET /api/works/{type}/{id}
func (h *WorksHandler) Details(w http.ResponseWriter, r *http.Request) {
	workType, id, ok := workKey(w, r)
	if !ok {
		return
	}

	details, err := h.Service.WorkDetails(r.Context(), workType, id)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	if h.Favorites != nil {
		if fav, err := h.Favorites.IsFavorite(r.Context(), details.Work); err == nil {
			details.Work.Favorite = fav
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(details)
}

// Similar returns works related to the given one.
// GET /api/works/{type}/{id}/similar?page=1
func (h *WorksHandler) Similar(w http.ResponseWriter, r *http.Request) {
	workType, id, ok := workKey(w, r)
	if !ok {
		return
	}

	result, err := h.Service.SimilarWorks(r.Context(), workType, id, parsePage(r))
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	result.Works = h.decorate(r.Context(), result.Items())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// Genres lists the genres available for a work type.
// GET /api/genres?type=MOVIE
func (h *WorksHandler) Genres(w http.ResponseWriter, r *http.Request) {
	workType := models.ParseWorkType(strings.TrimSpace(r.URL.Query().Get("type")))

	genres, err := h.Service.Genres(r.Context(), workType)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"genres": genres})
}

// ByGenre returns one page of works for a genre.
// GET /api/genres/{id}/works?type=MOVIE&page=1
func (h *WorksHandler) ByGenre(w http.ResponseWriter, r *http.Request) {
	genreID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || genreID <= 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid genre id"})
		return
	}
	workType := models.ParseWorkType(strings.TrimSpace(r.URL.Query().Get("type")))

	result, err := h.Service.WorksByGenre(r.Context(), workType, genreID, parsePage(r))
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	result.Works = h.decorate(r.Context(), result.Items())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *WorksHandler) decorate(ctx context.Context, works []models.Work) []models.Work {
	if h.Favorites == nil {
		return works
	}
	decorated, err := h.Favorites.Decorate(ctx, works)
	if err != nil {
		// Favorite flags are cosmetic; never fail the listing over them.
		return works
	}
	return decorated
}

// workKey extracts the {type}/{id} pair shared by the work detail routes.
func workKey(w http.ResponseWriter, r *http.Request) (models.WorkType, int, bool) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil || id <= 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid work id"})
		return "", 0, false
	}
	return models.ParseWorkType(vars["type"]), id, true
}

func parsePage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
