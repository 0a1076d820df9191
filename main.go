package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/marcuspimenta/BESTV-sub002/api"
	"github.com/marcuspimenta/BESTV-sub002/config"
	"github.com/marcuspimenta/BESTV-sub002/handlers"
	"github.com/marcuspimenta/BESTV-sub002/services/favorites"
	"github.com/marcuspimenta/BESTV-sub002/services/metadata"
	"github.com/marcuspimenta/BESTV-sub002/services/recommend"
	"github.com/marcuspimenta/BESTV-sub002/services/scheduler"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	fmt.Println("BESTV backend starting...")

	// Determine config path (env or default)
	configPath := os.Getenv("BESTV_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("cache", "settings.json")
	}

	// Init config manager and load settings (creates defaults if missing)
	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			// Redirect standard log to both console and file
			multiWriter := io.MultiWriter(os.Stdout, fileWriter)
			log.SetOutput(multiWriter)
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("Logging to file: %s", settings.Log.File)
		}
	}

	// Apply port override if specified
	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	if settings.Metadata.TMDBAPIKey == "" {
		log.Printf("warning: no TMDB API key configured; remote metadata requests will fail")
	}

	metadataService := metadata.NewService(settings.Metadata.TMDBAPIKey, settings.Metadata.Language, nil)

	favoriteService, err := favorites.NewService(settings.Database.Path)
	if err != nil {
		log.Fatalf("failed to initialise favorites: %v", err)
	}
	defer favoriteService.Close()

	publisher, err := recommend.NewPublisher(settings.Recommend.Mode, afero.NewOsFs(), settings.Cache.Directory)
	if err != nil {
		log.Fatalf("failed to initialise recommendation publisher: %v", err)
	}
	builder := recommend.NewBuilder(metadataService, publisher, nil, settings.Recommend.Limit)

	// The refresh job is tag keyed, so scheduling on every boot replaces any
	// previous registration instead of stacking a duplicate.
	schedulerService := scheduler.NewService()
	schedulerService.Start(context.Background())
	interval := time.Duration(settings.Recommend.UpdateIntervalMinutes) * time.Minute
	if err := schedulerService.Schedule(recommend.Tag, interval, builder.Update); err != nil {
		log.Fatalf("failed to schedule recommendation updates: %v", err)
	}
	if err := schedulerService.RunNow(recommend.Tag); err != nil {
		log.Printf("warning: initial recommendation pass not triggered: %v", err)
	}

	// Construct router and register API routes
	r := mux.NewRouter()
	api.Register(
		r,
		handlers.NewWorksHandler(metadataService, favoriteService),
		handlers.NewSearchHandler(metadataService, favoriteService),
		handlers.NewCastsHandler(metadataService),
		handlers.NewFavoritesHandler(favoriteService),
		handlers.NewRecommendationsHandler(publisher, schedulerService),
		handlers.NewTasksHandler(schedulerService),
		handlers.NewDeepLinkHandler(),
	)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Setup graceful shutdown
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("Shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	schedulerService.Stop(shutdownCtx)

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}
