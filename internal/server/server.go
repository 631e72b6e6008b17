// Package server is a development REST backend for the tracker client. It
// serves every endpoint the client calls under /api/v1 from a sqlite database.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kidandcat/tracker/internal/db"
)

type API struct {
	db      *db.DB
	log     *zap.Logger
	metrics *metrics
	reg     *prometheus.Registry
}

func NewAPI(d *db.DB, log *zap.Logger) *API {
	if log == nil {
		log = zap.NewNop()
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	return &API{
		db:      d,
		log:     log,
		metrics: newMetrics(reg),
		reg:     reg,
	}
}

// middlewares is the chain every request passes through. RequestID runs
// first so that Recovery and Logging can report the id.
func (a *API) middlewares() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID,
		Recovery(a.log),
		Logging(a.log),
		CORS,
		a.metrics.middleware,
	}
}

func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(a.middlewares()...)

	r.Handle("/metrics", promhttp.HandlerFor(a.reg, promhttp.HandlerOpts{}))
	r.Get("/health", a.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", a.handleLogin)
		r.Post("/auth/register", a.handleRegister)

		r.Group(func(r chi.Router) {
			r.Use(a.requireAuth)

			r.Get("/auth/me", a.handleMe)
			r.Post("/auth/logout", a.handleLogout)

			r.Get("/issues", a.handleListIssues)
			r.Post("/issues", a.handleCreateIssue)
			r.Get("/issues/{id}", a.handleGetIssue)
			r.Put("/issues/{id}", a.handleUpdateIssue)
			r.Patch("/issues/{id}/status", a.handleUpdateIssueStatus)
			r.Get("/issues/{id}/comments", a.handleListComments)
			r.Post("/issues/{id}/comments", a.handleCreateComment)

			r.Get("/projects", a.handleListProjects)
			r.With(requireAdmin).Post("/projects", a.handleCreateProject)
			r.Get("/projects/{id}", a.handleGetProject)
			r.With(requireAdmin).Put("/projects/{id}", a.handleUpdateProject)
			r.With(requireAdmin).Delete("/projects/{id}", a.handleDeleteProject)

			r.Get("/users", a.handleListUsers)
			r.Get("/users/{id}", a.handleGetUser)
			r.Put("/users/{id}", a.handleUpdateUser)

			r.Get("/notifications", a.handleListNotifications)
			r.Get("/notifications/unread", a.handleListUnreadNotifications)
			r.Patch("/notifications/read-all", a.handleMarkAllNotificationsRead)
			r.Patch("/notifications/{id}/read", a.handleMarkNotificationRead)
			r.Delete("/notifications/{id}", a.handleDeleteNotification)
		})
	})

	return r
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type Server struct {
	httpServer *http.Server
	log        *zap.Logger
}

func NewServer(addr string, handler http.Handler, log *zap.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		log: log,
	}
}

func (s *Server) Start() error {
	s.log.Info("starting http server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}
