// Package server exposes the dashboard HTTP API over chi.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vikrant82/elnet-dashboard/internal/db"
	"github.com/vikrant82/elnet-dashboard/internal/logger"
	"github.com/vikrant82/elnet-dashboard/internal/metrics"
	"github.com/vikrant82/elnet-dashboard/internal/models"
)

// HomeFetcher is the slice of the metering API the dashboard index needs.
type HomeFetcher interface {
	FetchHome(ctx context.Context) (*models.HomeData, error)
}

// Server serves the usage dashboard: bucketed history, live home data and
// recharge listing. It only reads the store; the polling pipeline is the
// sole writer.
type Server struct {
	store *db.DB
	home  HomeFetcher
	loc   *time.Location
	now   func() time.Time
}

// New creates a dashboard server over the given store and metering client.
func New(store *db.DB, home HomeFetcher, loc *time.Location) *Server {
	return &Server{
		store: store,
		home:  home,
		loc:   loc,
		now:   time.Now,
	}
}

// Handler builds the chi router with the full middleware stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Get("/", s.handleHome)
	r.Get("/dash_data", s.handleDashData)
	r.Get("/recharges", s.handleRecharges)
	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
