package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/marcuspimenta/BESTV-sub002/models"
)

type fakeFavoriteStore struct {
	saved map[string]models.Work
	err   error
}

func newFakeFavoriteStore() *fakeFavoriteStore {
	return &fakeFavoriteStore{saved: make(map[string]models.Work)}
}

func favKey(w models.Work) string {
	return string(w.Type) + "/" + strconv.Itoa(w.ID)
}

func (f *fakeFavoriteStore) List(_ context.Context) ([]models.Work, error) {
	if f.err != nil {
		return nil, f.err
	}
	works := make([]models.Work, 0, len(f.saved))
	for _, w := range f.saved {
		works = append(works, w)
	}
	return works, nil
}

func (f *fakeFavoriteStore) SetFavorite(_ context.Context, work models.Work, favorite bool) error {
	if f.err != nil {
		return f.err
	}
	if favorite {
		f.saved[favKey(work)] = work
	} else {
		delete(f.saved, favKey(work))
	}
	return nil
}

func (f *fakeFavoriteStore) IsFavorite(_ context.Context, work models.Work) (bool, error) {
	_, ok := f.saved[favKey(work)]
	return ok, f.err
}

func TestFavoritesSaveAndList(t *testing.T) {
	store := newFakeFavoriteStore()
	h := NewFavoritesHandler(store)

	body := strings.NewReader(`{"id": 550, "title": "Fight Club", "type": "MOVIE"}`)
	rec := httptest.NewRecorder()
	h.Save(rec, httptest.NewRequest(http.MethodPut, "/api/favorites", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/favorites", nil))

	var resp struct {
		Works []models.Work `json:"works"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Works) != 1 || resp.Works[0].Title != "Fight Club" {
		t.Errorf("unexpected list: %+v", resp.Works)
	}
}

func TestFavoritesSaveDefaultsTypeToMovie(t *testing.T) {
	store := newFakeFavoriteStore()
	h := NewFavoritesHandler(store)

	body := strings.NewReader(`{"id": 7}`)
	h.Save(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/api/favorites", body))

	if _, ok := store.saved["MOVIE/7"]; !ok {
		t.Errorf("work without type must be stored as MOVIE, got %v", store.saved)
	}
}

func TestFavoritesSaveRejectsMissingID(t *testing.T) {
	h := NewFavoritesHandler(newFakeFavoriteStore())

	body := strings.NewReader(`{"title": "No ID"}`)
	rec := httptest.NewRecorder()
	h.Save(rec, httptest.NewRequest(http.MethodPut, "/api/favorites", body))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestFavoritesSaveRejectsBadBody(t *testing.T) {
	h := NewFavoritesHandler(newFakeFavoriteStore())

	rec := httptest.NewRecorder()
	h.Save(rec, httptest.NewRequest(http.MethodPut, "/api/favorites", strings.NewReader("{not json")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestFavoritesDelete(t *testing.T) {
	store := newFakeFavoriteStore()
	store.saved["TV_SHOW/66"] = models.Work{ID: 66, Type: models.WorkTypeTVShow}
	h := NewFavoritesHandler(store)

	req := mux.SetURLVars(
		httptest.NewRequest(http.MethodDelete, "/api/favorites/TV_SHOW/66", nil),
		map[string]string{"type": "TV_SHOW", "id": "66"},
	)
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(store.saved) != 0 {
		t.Errorf("favorite was not removed: %v", store.saved)
	}
}

func TestFavoritesDeleteIsIdempotent(t *testing.T) {
	h := NewFavoritesHandler(newFakeFavoriteStore())

	req := mux.SetURLVars(
		httptest.NewRequest(http.MethodDelete, "/api/favorites/MOVIE/1", nil),
		map[string]string{"type": "MOVIE", "id": "1"},
	)
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("deleting an absent favorite must succeed, got %d", rec.Code)
	}
}
