// Package web wires the HTTP server for the attendance API.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nccpresi/attendance-backend/internal/database"
	"github.com/nccpresi/attendance-backend/internal/web/handlers"
	"github.com/nccpresi/attendance-backend/internal/web/middleware"
)

// Deps bundles the collaborators the handlers need. Archiver and Auth
// may be nil when the respective external service is not configured.
type Deps struct {
	Cadets     database.CadetStore
	Events     database.EventStore
	Attendance database.AttendanceStore
	Registry   handlers.FaceRegistry
	Matcher    handlers.Matcher
	Extractor  handlers.Extractor
	Archiver   handlers.Archiver
	Auth       handlers.Authenticator
}

type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	queue      *handlers.ArchiveQueue
}

func NewServer(deps Deps) *Server {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(chiMiddleware.Timeout(120 * time.Second))
	router.Use(middleware.CORS)

	s := &Server{
		router: router,
		queue:  handlers.NewArchiveQueue(deps.Archiver),
	}
	s.setupRoutes(deps)
	return s
}

func (s *Server) setupRoutes(deps Deps) {
	status := handlers.NewStatusHandler(s.queue)
	faces := handlers.NewFacesHandler(deps.Registry, deps.Matcher, deps.Extractor, s.queue)
	events := handlers.NewEventsHandler(deps.Events, deps.Attendance, deps.Cadets)
	attendance := handlers.NewAttendanceHandler(deps.Attendance, deps.Events, deps.Cadets)
	cadets := handlers.NewCadetsHandler(deps.Cadets)
	auth := handlers.NewAuthHandler(deps.Auth)

	s.router.Get("/", status.Root)
	s.router.Get("/healthz", status.Health)
	s.router.Get("/jobs", status.Jobs)
	s.router.Get("/jobs/{id}", status.Job)

	s.router.Post("/register", faces.Register)
	s.router.Post("/recognize", faces.Recognize)

	s.router.Post("/log_attendance", attendance.Log)
	s.router.Get("/event_attendance/{id}", attendance.ForEvent)
	s.router.Get("/event_ods", attendance.ODs)
	s.router.Get("/attendance-summary", attendance.Summary)

	s.router.Post("/create_event", events.Create)
	s.router.Get("/active_event", events.Active)
	s.router.Post("/end_event", events.End)
	s.router.Get("/events", events.List)
	s.router.Get("/events/{id}", events.Details)

	s.router.Get("/cadets", cadets.List)
	s.router.Get("/strength", cadets.Strength)

	s.router.Post("/login", auth.Login)
}

// Start blocks serving HTTP until the server is shut down.
func (s *Server) Start(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("starting server on %s", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown stops the HTTP server and waits for pending archive jobs.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
	}
	s.queue.Wait()
	return nil
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
