package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jakechorley/exam-timetabler/pkg/core/services"
	"github.com/jakechorley/exam-timetabler/pkg/db"
)

// Server exposes timetable generation over HTTP
type Server struct {
	logger    *zap.Logger
	store     db.DatasetStore
	generator services.Generator
	defaults  services.GenerateOptions
	validate  *validator.Validate

	Mux *chi.Mux
}

// NewServer wires the routes. Requests that omit the dataset are scheduled from store,
// and any option a request leaves unset falls back to defaults.
func NewServer(store db.DatasetStore, generator services.Generator, defaults services.GenerateOptions, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		logger:    logger,
		store:     store,
		generator: generator,
		defaults:  defaults,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		Mux:       chi.NewRouter(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.Mux.Use(s.logRequests)
	s.Mux.Use(s.recoverer)

	s.Mux.Get("/health", s.Health)
	s.Mux.Get("/dataset", s.GetDataset)
	s.Mux.Post("/timetables", s.GenerateTimetable)
}
