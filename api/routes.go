package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/marcuspimenta/BESTV-sub002/handlers"
)

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Set CORS headers
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleOptions handles OPTIONS requests for CORS preflight
func handleOptions(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Register mounts API endpoints onto the provided router.
func Register(
	r *mux.Router,
	worksHandler *handlers.WorksHandler,
	searchHandler *handlers.SearchHandler,
	castsHandler *handlers.CastsHandler,
	favoritesHandler *handlers.FavoritesHandler,
	recommendationsHandler *handlers.RecommendationsHandler,
	tasksHandler *handlers.TasksHandler,
	deepLinkHandler *handlers.DeepLinkHandler,
) {
	api := r.PathPrefix("/api").Subrouter()

	// Add CORS middleware to API subrouter
	api.Use(corsMiddleware)

	// Browse and detail routes
	api.HandleFunc("/works", worksHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/works", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/works/{type}/{id}", worksHandler.Details).Methods(http.MethodGet)
	api.HandleFunc("/works/{type}/{id}", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/works/{type}/{id}/similar", worksHandler.Similar).Methods(http.MethodGet)
	api.HandleFunc("/works/{type}/{id}/similar", handleOptions).Methods(http.MethodOptions)

	api.HandleFunc("/genres", worksHandler.Genres).Methods(http.MethodGet)
	api.HandleFunc("/genres", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/genres/{id}/works", worksHandler.ByGenre).Methods(http.MethodGet)
	api.HandleFunc("/genres/{id}/works", handleOptions).Methods(http.MethodOptions)

	api.HandleFunc("/search", searchHandler.Search).Methods(http.MethodGet)
	api.HandleFunc("/search", handleOptions).Methods(http.MethodOptions)

	api.HandleFunc("/casts/{id}", castsHandler.Details).Methods(http.MethodGet)
	api.HandleFunc("/casts/{id}", handleOptions).Methods(http.MethodOptions)

	// Favorites
	api.HandleFunc("/favorites", favoritesHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/favorites", favoritesHandler.Save).Methods(http.MethodPut)
	api.HandleFunc("/favorites", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/favorites/{type}/{id}", favoritesHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/favorites/{type}/{id}", handleOptions).Methods(http.MethodOptions)

	// Recommendations
	api.HandleFunc("/recommendations", recommendationsHandler.Rows).Methods(http.MethodGet)
	api.HandleFunc("/recommendations", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/recommendations/refresh", recommendationsHandler.Refresh).Methods(http.MethodPost)
	api.HandleFunc("/recommendations/refresh", handleOptions).Methods(http.MethodOptions)

	// Background job monitoring
	api.HandleFunc("/tasks", tasksHandler.ListTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks", handleOptions).Methods(http.MethodOptions)

	// Deep link resolution
	api.HandleFunc("/deeplink", deepLinkHandler.Resolve).Methods(http.MethodGet)
	api.HandleFunc("/deeplink", handleOptions).Methods(http.MethodOptions)
}
