package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ember/internal/platform/metrics"
	"ember/internal/platform/middleware"
)

// Handler bundles the domain services behind the HTTP surface.
type Handler struct {
	logger     *slog.Logger
	metrics    *metrics.Metrics
	screening  ScreeningService
	encounters EncounterService
	settings   SettingsService
	inbox      InboxService
	validator  middleware.JWTValidator
}

func NewHandler(
	logger *slog.Logger,
	m *metrics.Metrics,
	screening ScreeningService,
	encounters EncounterService,
	settings SettingsService,
	inbox InboxService,
	validator middleware.JWTValidator,
) *Handler {
	return &Handler{
		logger:     logger,
		metrics:    m,
		screening:  screening,
		encounters: encounters,
		settings:   settings,
		inbox:      inbox,
		validator:  validator,
	}
}

// NewRouter wires all endpoints. Every domain route runs behind auth; the
// acting user always comes from the validated token, never from the request.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.Metrics(h.metrics))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(h.validator, h.logger))

		r.Post("/screens", h.handleSubmitScreen)
		r.Get("/screens", h.handleListScreens)
		r.Put("/screens/{id}", h.handleEditScreen)

		r.Post("/encounters", h.handleLogEncounter)
		r.Delete("/encounters/{id}", h.handleDeleteEncounter)

		r.Post("/contacts", h.handleAddContact)
		r.Get("/contacts", h.handleListContacts)
		r.Delete("/contacts/{id}", h.handleRemoveContact)

		r.Get("/tracing/settings", h.handleGetSettings)
		r.Put("/tracing/settings", h.handleUpdateSettings)
		r.Get("/tracing/inbox", h.handleListInbox)
		r.Post("/tracing/inbox/read", h.handleMarkRead)
	})

	return r
}

func pathParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
