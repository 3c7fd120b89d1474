package api

import (
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bobarin/lyricburn/internal/db"
	"github.com/bobarin/lyricburn/internal/metrics"
)

// RouterConfig holds settings for the API router, passed from main.go
// so CORS can be configured from env vars the way the teacher's
// RouterConfig does.
type RouterConfig struct {
	// CorsAllowedOrigins is a comma-separated list of allowed origins.
	// If empty, defaults to "*" (development mode).
	CorsAllowedOrigins string
}

func NewRouter(h *Handler, database *db.DB, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	allowedOrigins := []string{"*"}
	if cfg.CorsAllowedOrigins != "" {
		origins := strings.Split(cfg.CorsAllowedOrigins, ",")
		trimmed := make([]string, 0, len(origins))
		for _, o := range origins {
			if s := strings.TrimSpace(o); s != "" {
				trimmed = append(trimmed, s)
			}
		}
		if len(trimmed) > 0 {
			allowedOrigins = trimmed
		}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Owner-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/transcribe", h.Transcribe)

		r.Group(func(r chi.Router) {
			r.Use(ownerKeyAuth(database))
			r.Get("/video/{id}", h.GetVideo)
			r.Get("/segments/{id}", h.ListSegments)
			r.Put("/segments/{id}", h.ReplaceSegments)
		})

		// Burn carries video_id in its JSON body rather than the URL, so
		// it authorizes itself inline instead of through ownerKeyAuth.
		r.Post("/burn", h.Burn)
	})

	return r
}
