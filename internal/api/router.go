package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	errs "igapi/pkg/errors"
	"igapi/pkg/ratelimit"
)

// Options configures the router around the handlers
type Options struct {
	// Prefix mounts the API routes, e.g. "/api/v1". Empty mounts them at /.
	Prefix string
	APIKey string
	// CORSOrigins lists allowed origins; empty or "*" allows any.
	CORSOrigins []string
	// Limiter throttles clients by address. Nil disables throttling.
	Limiter *ratelimit.Keyed
}

// NewRouter wires middleware and routes. Root and health stay reachable
// without an API key and are not throttled.
func NewRouter(h *Handler, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(h.logger))
	r.Use(recoverMiddleware(h.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", APIKeyHeader, RequestIDHeader},
		MaxAge:         600,
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, errs.CodeNotFound, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, errs.CodeMethodNotAllowed, "Method not allowed")
	})

	prefix := strings.TrimRight(opts.Prefix, "/")
	routes := func(r chi.Router) {
		r.Get("/", h.root)
		r.Get("/health", h.health)

		r.Group(func(r chi.Router) {
			if opts.Limiter != nil {
				r.Use(rateLimitMiddleware(opts.Limiter))
			}
			if opts.APIKey != "" {
				r.Use(apiKeyMiddleware(opts.APIKey))
			}

			r.Get("/profile/{username}", h.getProfile)
			r.Get("/posts/{username}", h.getPosts)
			r.Get("/post", h.getPostByURL)
			r.Get("/post/{shortcode}", h.getPost)
			r.Get("/stories/{username}", h.getStories)
			r.Get("/highlights/{username}", h.getHighlights)
			r.Get("/comments/{shortcode}", h.getComments)
			r.Get("/hashtag/{name}", h.getHashtag)
			r.Get("/search", h.search)
			r.Get("/analytics/{username}", h.getAnalytics)
		})
	}

	if prefix == "" {
		routes(r)
		return r
	}

	r.Get("/", h.banner(prefix))
	r.Route(prefix, routes)
	return r
}
