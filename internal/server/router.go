package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/888Greys/rag-ai/internal/api"
	"github.com/888Greys/rag-ai/internal/api/handlers"
	"github.com/888Greys/rag-ai/internal/api/middleware"
)

type RouterConfig struct {
	AuthValidator middleware.AuthValidator
	ChatHandler   *handlers.ChatHandler
	FilesHandler  *handlers.FilesHandler
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

	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(cfg.AuthValidator))

		r.Post("/chat", cfg.ChatHandler.Stream)

		r.Route("/chats", func(r chi.Router) {
			r.Get("/", cfg.ChatHandler.List)
			r.Get("/{id}", cfg.ChatHandler.Get)
		})

		r.Route("/files", func(r chi.Router) {
			r.Post("/upload", cfg.FilesHandler.Upload)
			r.Post("/upload-text", cfg.FilesHandler.UploadText)
			r.Get("/list", cfg.FilesHandler.List)
			r.Delete("/delete", cfg.FilesHandler.Delete)
		})
	})

	return r
}
