package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ledgergate/ledgergate/internal/handlers"
	"github.com/ledgergate/ledgergate/internal/httpx"
	"github.com/ledgergate/ledgergate/internal/mw"
	"github.com/ledgergate/ledgergate/internal/version"
)

type Deps struct {
	// APIKey is the shared secret checked against the ?key= parameter.
	APIKey string

	// ConfigErr, when non-nil, makes every authenticated route answer 500
	// "server misconfigured" while the liveness surface keeps working.
	ConfigErr error

	Lists handlers.ListSource
	Sheet handlers.RowAppender
}

func New(d Deps) http.Handler {
	r := chi.NewRouter()

	// baseline
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Use(mw.Trace())
	r.Use(mw.Logger(mw.LogOpts{
		SkipPaths:    []string{"/", "/healthz", "/version"},
		RedactParams: []string{"key"},
	}))

	r.Get("/", liveness)
	r.Get("/healthz", healthCheckHandler)
	r.Get("/version", versionHandler)

	r.Group(func(gr chi.Router) {
		gr.Use(mw.RequireConfig(d.ConfigErr))
		gr.Use(mw.APIKey(d.APIKey))

		gr.Get("/lists", handlers.NewListsHandler(d.Lists).ServeHTTP)
		gr.Post("/add", handlers.NewAddHandler(d.Sheet).ServeHTTP)
		gr.Post("/flush-cache", handlers.NewFlushHandler(d.Lists).ServeHTTP)
	})

	notFound := func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusNotFound, "Not Found", "")
	}
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	return r
}

func liveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ledgergate is up")
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": version.Version,
	})
}

func versionHandler(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, version.Get())
}
