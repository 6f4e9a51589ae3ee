package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/FACorreiaa/go-trip-planner/internal/api/itinerary"
	"github.com/FACorreiaa/go-trip-planner/internal/api/pipeline"
	"github.com/FACorreiaa/go-trip-planner/internal/api/planner"
	"github.com/FACorreiaa/go-trip-planner/internal/api/settings"
)

// Config contains the handlers and middleware needed for the router setup.
type Config struct {
	StreamingHandler *pipeline.StreamingHandler
	PlannerHandler   planner.Handler
	ItineraryHandler itinerary.Handler
	SettingsHandler  settings.Handler

	// AuthenticateMiddleware rejects requests without a valid token.
	// OptionalAuthMiddleware attaches the user when a token is present but
	// lets anonymous requests through; generation works without an account.
	AuthenticateMiddleware func(http.Handler) http.Handler
	OptionalAuthMiddleware func(http.Handler) http.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are applied before
// mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// Generation and parsing work without an account; results are only
		// persisted when a valid token identifies an owner.
		r.Group(func(r chi.Router) {
			r.Use(cfg.OptionalAuthMiddleware)

			r.Post("/itineraries/generate/stream", cfg.StreamingHandler.GenerateStream)
			r.Post("/requirements/parse", cfg.PlannerHandler.ParseRequirements)
		})

		// Saved itineraries require an owner.
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Get("/itineraries", cfg.ItineraryHandler.GetItineraries)
			r.Get("/itineraries/{itineraryID}", cfg.ItineraryHandler.GetItinerary)
			r.Put("/itineraries/{itineraryID}/status", cfg.ItineraryHandler.UpdateItineraryStatus)
			r.Delete("/itineraries/{itineraryID}", cfg.ItineraryHandler.DeleteItinerary)
		})

		// Runtime credential administration.
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Put("/config/keys", cfg.SettingsHandler.UpdateRuntimeKey)
		})
	})

	return r
}
