package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/WiseCart620/wisecartfrontend-sub001/internal/auth"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/catalog"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/events"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/files"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/observability"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/platform/httpx"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/procurement"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/shared"
	"github.com/WiseCart620/wisecartfrontend-sub001/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	SessionManager     *shared.SessionManager
	CSRFManager        *shared.CSRFManager
	AuthHandler        *auth.Handler
	CatalogHandler     *catalog.Handler
	ProcurementHandler *procurement.Handler
	FilesHandler       *files.Handler
	EventStream        *events.Stream
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router serving the JSON API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.OK(w, map[string]string{"status": "ok"})
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	if params.CatalogHandler != nil {
		r.With(auth.RequireActor).Route("/catalog", params.CatalogHandler.MountRoutes)
	}
	r.With(auth.RequireActor).Route("/procurement", params.ProcurementHandler.MountRoutes)
	if params.FilesHandler != nil {
		r.With(auth.RequireActor).Route("/files", params.FilesHandler.MountRoutes)
	}
	if params.EventStream != nil {
		r.With(auth.RequireActor).Method(http.MethodGet, "/events", params.EventStream)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
