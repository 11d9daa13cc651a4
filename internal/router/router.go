package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/FACorreiaa/go-trip-planner/internal/api/auth"
	"github.com/FACorreiaa/go-trip-planner/internal/api/catalog"
	"github.com/FACorreiaa/go-trip-planner/internal/api/export"
	"github.com/FACorreiaa/go-trip-planner/internal/api/itinerary"
	"github.com/FACorreiaa/go-trip-planner/internal/api/share"
)

// Config contains dependencies needed for the router setup
type Config struct {
	AuthHandler            *auth.Handler
	CatalogHandler         *catalog.Handler
	ItineraryHandler       *itinerary.Handler
	ShareHandler           *share.Handler
	ExportHandler          *export.Handler
	AuthenticateMiddleware func(http.Handler) http.Handler
	// AuthRateLimit guards register and login. Nil disables it.
	AuthRateLimit  func(http.Handler) http.Handler
	AllowedOrigins []string
}

// SetupRouter initializes and configures the API router.
// Server-wide middleware (logger, request id, recoverer) is applied by the caller.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("pong"))
		})

		// Public
		r.Group(func(r chi.Router) {
			if cfg.AuthRateLimit != nil {
				r.Use(cfg.AuthRateLimit)
			}
			r.Post("/auth/register", cfg.AuthHandler.Register)
			r.Post("/auth/login", cfg.AuthHandler.Login)
		})
		r.Get("/cities", cfg.CatalogHandler.ListCities)
		r.Get("/cities/{city}/activities", cfg.CatalogHandler.ListActivities)
		r.Get("/cities/{city}/templates", cfg.CatalogHandler.ListTemplates)
		r.Get("/activities/search", cfg.CatalogHandler.SearchActivities)
		r.Get("/shared/{token}", cfg.ShareHandler.GetShared)

		// Protected
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Route("/itineraries", func(r chi.Router) {
				cfg.ItineraryHandler.Routes(r, func(r chi.Router) {
					r.Post("/share", cfg.ShareHandler.CreateLink)
					r.Get("/share/qr", cfg.ShareHandler.QRCode)
					r.Get("/export", cfg.ExportHandler.Export)
				})
			})
		})
	})

	return r
}
