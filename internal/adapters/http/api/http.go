// Package api exposes the sales dashboard over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/salestrack/internal/adapters/http/swagger"
	"github.com/okian/salestrack/internal/app"
	"github.com/okian/salestrack/internal/domain/model"
	"github.com/okian/salestrack/internal/domain/window"
	"github.com/okian/salestrack/pkg/logger"
	"github.com/okian/salestrack/pkg/metrics"
)

const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. *app.Service satisfies it.
type Dependencies interface {
	Representatives(ctx context.Context) []model.Representative
	AddRepresentative(ctx context.Context, name string) (model.Representative, app.Outcome, error)
	RecordDeal(ctx context.Context, id int64, amount float64) (model.Representative, app.Outcome, error)
	RemoveRepresentative(ctx context.Context, id int64) (app.Outcome, error)

	Filter(ctx context.Context) window.Filter
	SetTimeFilter(ctx context.Context, f window.Filter) error
	Dashboard(ctx context.Context) app.Dashboard
	DashboardFor(ctx context.Context, f window.Filter) app.Dashboard
	Snapshot(ctx context.Context) app.Snapshot
	Location() *time.Location

	// SeenAndRecord and Unrecord track Idempotency-Key headers.
	SeenAndRecord(ctx context.Context, key string) bool
	Unrecord(ctx context.Context, key string)
}

// Server wires HTTP routes for the dashboard API.
type Server struct {
	healthHandler    *HealthHandler
	repsHandler      *RepsHandler
	dashboardHandler *DashboardHandler
	filterHandler    *FilterHandler
	exportHandler    *ExportHandler
	logger           logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for handler failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{logger: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.repsHandler = NewRepsHandler(deps, s.logger)
	s.dashboardHandler = NewDashboardHandler(deps)
	s.filterHandler = NewFilterHandler(deps)
	s.exportHandler = NewExportHandler(deps, s.logger)
	return s
}

// Router returns a chi router with middleware and every route attached.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	s.Register(r)
	return r
}

// Register attaches all routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	swagger.Register(r)

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", MetricsMiddleware(s.dashboardHandler.HandleGetDashboard, "dashboard"))

		r.Get("/reps", MetricsMiddleware(s.repsHandler.HandleList, "reps_list"))
		r.Post("/reps", MetricsMiddleware(s.repsHandler.HandleAdd, "reps_add"))
		r.Delete("/reps/{id}", MetricsMiddleware(s.repsHandler.HandleRemove, "reps_remove"))
		r.Post("/reps/{id}/deals", MetricsMiddleware(s.repsHandler.HandleRecordDeal, "deals_record"))

		r.Get("/filter", MetricsMiddleware(s.filterHandler.HandleGet, "filter_get"))
		r.Put("/filter", MetricsMiddleware(s.filterHandler.HandlePut, "filter_set"))

		r.Get("/export.csv", MetricsMiddleware(s.exportHandler.HandleCSV, "export_csv"))
		r.Get("/export.json", MetricsMiddleware(s.exportHandler.HandleJSON, "export_json"))
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// mutationResponse is returned by every state-changing endpoint.
type mutationResponse struct {
	Changed   bool                  `json:"changed"`
	Duplicate bool                  `json:"duplicate,omitempty"`
	Warnings  []string              `json:"warnings"`
	Rep       *model.Representative `json:"rep,omitempty"`
}

func newMutationResponse(out app.Outcome) mutationResponse {
	warnings := out.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return mutationResponse{Changed: out.Changed, Warnings: warnings}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}
