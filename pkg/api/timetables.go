package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/exam-timetabler/pkg/core/model"
	"github.com/jakechorley/exam-timetabler/pkg/core/services"
	"github.com/jakechorley/exam-timetabler/pkg/core/timetabler"
	"github.com/jakechorley/exam-timetabler/pkg/db"
)

type horizonRequest struct {
	StartDate string   `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	DayCount  *int     `json:"dayCount" validate:"omitempty,gte=0"`
	DayRule   string   `json:"dayRule"`
	TimeSlots []string `json:"timeSlots" validate:"omitempty,dive,required"`
}

// generateRequest is the body of POST /timetables. When courses, rooms and constraints are
// all omitted the stored dataset is scheduled.
type generateRequest struct {
	Courses       []model.Course             `json:"courses" validate:"omitempty,dive"`
	Rooms         []model.Room               `json:"rooms" validate:"omitempty,dive"`
	Constraints   []model.Constraint         `json:"constraints" validate:"omitempty,dive"`
	Algorithm     model.Algorithm            `json:"algorithm" validate:"omitempty,oneof=GENETIC_ALGORITHM SIMULATED_ANNEALING"`
	Params        *model.AlgorithmParameters `json:"params"`
	Seed          *int64                     `json:"seed"`
	Horizon       *horizonRequest            `json:"horizon"`
	SpreadGroupBy string                     `json:"spreadGroupBy" validate:"omitempty,oneof=department none"`
}

type progressEvent struct {
	Percent float64 `json:"percent"`
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) GetDataset(w http.ResponseWriter, r *http.Request) {
	dataset, err := services.ListData(r.Context(), s.store, s.logger)
	if err != nil {
		s.internalServerError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, dataset)
}

// GenerateTimetable runs one generation. With Accept: text/event-stream the response is a
// stream of progress events followed by a single result or error event.
func (s *Server) GenerateTimetable(w http.ResponseWriter, r *http.Request) {
	// Params fields the request omits keep their configured values
	params := s.defaults.Params
	req := generateRequest{Params: &params}
	if err := readJSON(w, r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	dataset, err := s.datasetFor(r.Context(), &req)
	if err != nil {
		s.internalServerError(w, r, err)
		return
	}
	opts := s.optionsFor(&req)

	if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		s.streamGeneration(w, r, dataset, opts)
		return
	}

	result, err := services.GenerateFromDataset(r.Context(), dataset, s.generator, s.logger, opts, nil)
	if err != nil {
		s.generationError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, result.Generation)
}

func (s *Server) datasetFor(ctx context.Context, req *generateRequest) (*db.Dataset, error) {
	if req.Courses == nil && req.Rooms == nil && req.Constraints == nil {
		return db.LoadDataset(ctx, s.store)
	}
	return &db.Dataset{
		Courses:     req.Courses,
		Rooms:       req.Rooms,
		Constraints: req.Constraints,
	}, nil
}

func (s *Server) optionsFor(req *generateRequest) services.GenerateOptions {
	opts := s.defaults

	if req.Algorithm != "" {
		opts.Algorithm = req.Algorithm
	}
	if req.Params != nil {
		opts.Params = *req.Params
	}
	if req.Seed != nil {
		opts.Seed = *req.Seed
	}
	if req.SpreadGroupBy != "" {
		opts.SpreadGroupBy = req.SpreadGroupBy
	}

	if h := req.Horizon; h != nil {
		if h.StartDate != "" {
			// Already validated as YYYY-MM-DD
			opts.Horizon.StartDate, _ = time.Parse("2006-01-02", h.StartDate)
		}
		if h.DayCount != nil {
			opts.Horizon.DayCount = *h.DayCount
		}
		if h.DayRule != "" {
			opts.Horizon.DayRule = h.DayRule
		}
		if len(h.TimeSlots) > 0 {
			opts.Horizon.TimeSlots = h.TimeSlots
		}
	}

	if opts.Horizon.StartDate.IsZero() {
		now := time.Now().UTC()
		opts.Horizon.StartDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	return opts
}

// generationStatus maps a generation failure to its HTTP status
func generationStatus(err error) int {
	var invalid *timetabler.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, timetabler.ErrRunInProgress):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	// The remaining failures come from request options, such as a day rule that does not parse
	return http.StatusBadRequest
}

func (s *Server) generationError(w http.ResponseWriter, r *http.Request, err error) {
	status := generationStatus(err)
	s.logger.Warn("Timetable generation failed", zap.Int("status", status), zap.Error(err))
	s.writeError(w, r, status, err.Error())
}

type generationOutcome struct {
	result *services.TimetableResult
	err    error
}

func (s *Server) streamGeneration(w http.ResponseWriter, r *http.Request, dataset *db.Dataset, opts services.GenerateOptions) {
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	progress := make(chan float64, 1)
	done := make(chan generationOutcome, 1)
	go func() {
		result, err := services.GenerateFromDataset(r.Context(), dataset, s.generator, s.logger, opts, progress)
		done <- generationOutcome{result: result, err: err}
	}()

	for {
		select {
		case percent := <-progress:
			s.writeEvent(w, rc, "progress", progressEvent{Percent: percent})
		case outcome := <-done:
			// Pick up the final value if it is still buffered
			select {
			case percent := <-progress:
				s.writeEvent(w, rc, "progress", progressEvent{Percent: percent})
			default:
			}

			if outcome.err != nil {
				s.logger.Warn("Timetable generation failed", zap.Error(outcome.err))
				s.writeEvent(w, rc, "error", errorResponse{Error: outcome.err.Error()})
				return
			}
			s.writeEvent(w, rc, "result", outcome.result.Generation)
			return
		}
	}
}

func (s *Server) writeEvent(w http.ResponseWriter, rc *http.ResponseController, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("Failed to encode event", zap.String("event", event), zap.Error(err))
		return
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		s.logger.Debug("Failed to write event", zap.String("event", event), zap.Error(err))
		return
	}
	if err := rc.Flush(); err != nil {
		s.logger.Debug("Failed to flush event", zap.String("event", event), zap.Error(err))
	}
}
