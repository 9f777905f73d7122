package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/reservo/reservo/internal/auth"
	"github.com/reservo/reservo/internal/booking"
	"github.com/reservo/reservo/internal/observability"
	"github.com/reservo/reservo/internal/platform/httpx"
	"github.com/reservo/reservo/internal/shared"
	"github.com/reservo/reservo/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Sessions       *shared.SessionStore
	CSRFManager    *shared.CSRFManager
	AuthHandler    *auth.Handler
	BookingHandler *booking.Handler
	JobHandler     *jobs.Handler
	Metrics        *observability.Metrics
	AccessLog      bool
}

// NewRouter constructs the chi.Router with Reservo defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:      params.Logger,
		Config:      params.Config,
		Sessions:    params.Sessions,
		CSRFManager: params.CSRFManager,
		Metrics:     params.Metrics,
	}) {
		r.Use(mw)
	}

	if params.AccessLog {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	params.AuthHandler.MountMe(r)

	r.Route("/reservations", params.BookingHandler.MountRoutes)
	r.Route("/admin", params.BookingHandler.MountAdminRoutes)
	r.Route("/slots", params.BookingHandler.MountSlotRoutes)

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.RespondError(w, shared.ErrNotFound)
	})

	return r
}
