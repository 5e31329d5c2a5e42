package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/askdoc-io/askdoc/internal/api"
	"github.com/askdoc-io/askdoc/internal/api/handlers"
	"github.com/askdoc-io/askdoc/internal/api/middleware"
)

type RouterConfig struct {
	DocumentHandler *handlers.DocumentHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 10 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/documents", func(r chi.Router) {
		r.Post("/", cfg.DocumentHandler.Register)
		r.Get("/", cfg.DocumentHandler.List)
		r.Get("/{id}", cfg.DocumentHandler.Get)
		r.Delete("/{id}", cfg.DocumentHandler.Delete)
		r.Post("/{id}/process", cfg.DocumentHandler.Process)
		r.Post("/{id}/ask", cfg.DocumentHandler.Ask)
	})

	r.Get("/stats", cfg.DocumentHandler.Stats)

	return r
}
