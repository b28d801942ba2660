package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/veridoc-ai/veridoc/internal/api"
	"github.com/veridoc-ai/veridoc/internal/api/handlers"
	"github.com/veridoc-ai/veridoc/internal/api/middleware"
)

type RouterConfig struct {
	DocumentHandler *handlers.DocumentHandler
	AnswerHandler   *handlers.AnswerHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/documents", func(r chi.Router) {
		r.Post("/", cfg.DocumentHandler.Ingest)
		r.Get("/{id}", cfg.DocumentHandler.Get)
		r.Post("/{id}/answer", cfg.AnswerHandler.Answer)
	})

	return r
}
