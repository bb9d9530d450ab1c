package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ruthenian8/dream/app"
	"github.com/ruthenian8/dream/handlers"
	"github.com/ruthenian8/dream/middleware"
	"github.com/ruthenian8/dream/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimiddleware.Recoverer)
	if deps.Config.Server.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(deps.Config.Server.RequestTimeout))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.Config.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Keep the interfaces nil when the pipeline is not built
	var (
		stats   handlers.StatsProvider
		service handlers.ConvertService
	)
	if deps.Converter != nil {
		stats = deps.Converter
		service = deps.Converter
	}
	health := handlers.NewHealthHandler(deps.SQLDB(), stats, deps.Config.Version, deps.Config.Environment, deps.Logger)
	convertHandler := handlers.NewConvertHandler(service, deps.Logger)

	// Health check endpoints
	r.Get("/healthz", health.HandleHealth)
	r.Get("/readyz", health.HandleReadiness)

	// The dialog agent posts to the root path
	r.Post("/convert_reddit", convertHandler.HandleConvert)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", health.HandleStatus)
		r.Post("/convert_reddit", convertHandler.HandleConvert)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	})

	return r
}
