package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterOptions struct {
	APIKey      string
	IPWhitelist []string
}

func NewRouter(apiHandler *APIHandler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	// All API routes sit behind the IP allowlist and API key checks.
	r.Route("/api", func(r chi.Router) {
		r.Use(IPWhitelist(opts.IPWhitelist))
		r.Use(APIKeyAuth(opts.APIKey))

		r.Post("/chat", apiHandler.ChatHandler)
		r.Post("/documents", apiHandler.IngestDocumentHandler)

		r.Post("/conversations", apiHandler.CreateConversationHandler)
		r.Get("/conversations", apiHandler.ActiveConversationsHandler)
		r.Get("/conversations/{conversationID}", apiHandler.GetConversationHandler)
		r.Delete("/conversations/{conversationID}", apiHandler.ClearConversationHandler)
	})

	return r
}
