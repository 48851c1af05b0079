package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"github.com/jakechorley/exam-timetabler/pkg/core/horizon"
	"github.com/jakechorley/exam-timetabler/pkg/core/model"
	"github.com/jakechorley/exam-timetabler/pkg/core/services"
	"github.com/jakechorley/exam-timetabler/pkg/core/timetabler"
	"github.com/jakechorley/exam-timetabler/pkg/db"
)

// busyGenerator always reports a run in progress
type busyGenerator struct{}

func (busyGenerator) Generate(ctx context.Context, req timetabler.Request, progress chan<- float64) (*model.GenerationResult, error) {
	return nil, timetabler.ErrRunInProgress
}

// panickingGenerator simulates a bug inside generation
type panickingGenerator struct{}

func (panickingGenerator) Generate(ctx context.Context, req timetabler.Request, progress chan<- float64) (*model.GenerationResult, error) {
	panic("gene out of range")
}

// recordingGenerator keeps the last request and returns an empty result
type recordingGenerator struct {
	req timetabler.Request
}

func (g *recordingGenerator) Generate(ctx context.Context, req timetabler.Request, progress chan<- float64) (*model.GenerationResult, error) {
	g.req = req
	return &model.GenerationResult{Algorithm: req.Algorithm, Timetable: []model.TimetableEntry{}}, nil
}

func testDefaults() services.GenerateOptions {
	params := model.DefaultParameters()
	params.PopulationSize = 10
	params.Generations = 20

	return services.GenerateOptions{
		Algorithm:     model.AlgorithmGenetic,
		Params:        params,
		Seed:          7,
		Horizon:       horizon.Input{StartDate: time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), DayCount: 5},
		SpreadGroupBy: "department",
	}
}

func newTestServer(generator services.Generator) *Server {
	return NewServer(db.NewFileStore(db.DefaultDataset()), generator, testDefaults(), nil)
}

func post(s *Server, body string, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/timetables", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	s.Mux.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	g := NewWithT(t)
	s := newTestServer(timetabler.NewEngine(nil))

	rec := httptest.NewRecorder()
	s.Mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	g.Expect(rec.Code).To(Equal(http.StatusOK))
	g.Expect(rec.Body.String()).To(MatchJSON(`{"status":"ok"}`))
}

func TestGetDataset(t *testing.T) {
	g := NewWithT(t)
	s := newTestServer(timetabler.NewEngine(nil))

	rec := httptest.NewRecorder()
	s.Mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dataset", nil))

	g.Expect(rec.Code).To(Equal(http.StatusOK))

	var dataset db.Dataset
	g.Expect(json.Unmarshal(rec.Body.Bytes(), &dataset)).To(Succeed())
	g.Expect(dataset.Courses).To(HaveLen(5))
	g.Expect(dataset.Rooms).To(ContainElement(model.Room{ID: "AUD", Capacity: 200}))
}

func TestGenerateTimetable_StoredDataset(t *testing.T) {
	g := NewWithT(t)
	s := newTestServer(timetabler.NewEngine(nil))

	rec := post(s, `{"algorithm": "SIMULATED_ANNEALING", "params": {"populationSize": 2, "mutationRate": 0.05, "crossoverRate": 0.8, "generations": 40, "initialTemperature": 100, "coolingRate": 0.99}}`, "")

	g.Expect(rec.Code).To(Equal(http.StatusOK))
	g.Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))

	var result model.GenerationResult
	g.Expect(json.Unmarshal(rec.Body.Bytes(), &result)).To(Succeed())
	g.Expect(result.Algorithm).To(Equal(model.AlgorithmAnnealing))
	g.Expect(result.Timetable).To(HaveLen(5))
	g.Expect(result.Metrics.FitnessHistory).To(HaveLen(40))
	g.Expect(result.RunID).NotTo(BeEmpty())
	g.Expect(result.Metrics.HardConstraintViolations).To(BeNumerically(">=", 0))
}

func TestGenerateTimetable_PartialParamsKeepDefaults(t *testing.T) {
	g := NewWithT(t)
	generator := &recordingGenerator{}
	s := newTestServer(generator)

	rec := post(s, `{"params": {"generations": 10}}`, "")

	g.Expect(rec.Code).To(Equal(http.StatusOK))

	expected := testDefaults().Params
	expected.Generations = 10
	g.Expect(generator.req.Params).To(Equal(expected))
}

func TestGenerateTimetable_NullParamsUseDefaults(t *testing.T) {
	g := NewWithT(t)
	generator := &recordingGenerator{}
	s := newTestServer(generator)

	rec := post(s, `{"params": null}`, "")

	g.Expect(rec.Code).To(Equal(http.StatusOK))
	g.Expect(generator.req.Params).To(Equal(testDefaults().Params))
}

func TestGenerateTimetable_InlineDataset(t *testing.T) {
	g := NewWithT(t)
	s := newTestServer(timetabler.NewEngine(nil))

	rec := post(s, `{
		"courses": [{"id": "CS101", "departmentId": "DEPT_CS", "students": 150}],
		"rooms": [{"id": "R101", "capacity": 100}],
		"constraints": [{"id": "c2", "type": "Hard", "enabled": true}],
		"horizon": {"startDate": "2026-11-02", "dayCount": 2, "timeSlots": ["AM", "PM"]}
	}`, "")

	g.Expect(rec.Code).To(Equal(http.StatusOK))

	var result model.GenerationResult
	g.Expect(json.Unmarshal(rec.Body.Bytes(), &result)).To(Succeed())
	g.Expect(result.Timetable).To(HaveLen(1))
	g.Expect(result.Timetable[0].Day).To(BeElementOf("2026-11-02", "2026-11-03"))
	g.Expect(result.Timetable[0].TimeSlot).To(BeElementOf("AM", "PM"))
	g.Expect(result.Metrics.HardConstraintViolations).To(Equal(1))
}

func TestGenerateTimetable_EmptyCourses(t *testing.T) {
	g := NewWithT(t)
	s := newTestServer(timetabler.NewEngine(nil))

	rec := post(s, `{"courses": [], "rooms": [], "constraints": []}`, "")

	g.Expect(rec.Code).To(Equal(http.StatusOK))
	g.Expect(rec.Body.String()).To(ContainSubstring(`"timetable":[]`))
	g.Expect(rec.Body.String()).To(ContainSubstring(`"hardConstraintViolations":0`))
}

func TestGenerateTimetable_NoRooms(t *testing.T) {
	g := NewWithT(t)
	s := newTestServer(timetabler.NewEngine(nil))

	rec := post(s, `{"courses": [{"id": "CS101", "students": 10}], "rooms": []}`, "")

	g.Expect(rec.Code).To(Equal(http.StatusUnprocessableEntity))
	g.Expect(rec.Body.String()).To(ContainSubstring("rooms"))
}

func TestGenerateTimetable_BadRequests(t *testing.T) {
	s := newTestServer(timetabler.NewEngine(nil))

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"malformed json", `{"algorithm":`},
		{"unknown field", `{"algorithmName": "GENETIC_ALGORITHM"}`},
		{"unknown algorithm", `{"algorithm": "TABU_SEARCH"}`},
		{"course without id", `{"courses": [{"students": 3}], "rooms": [{"id": "R1", "capacity": 5}]}`},
		{"bad start date", `{"horizon": {"startDate": "next monday"}}`},
		{"trailing data", `{} {}`},
		{"bad day rule", `{"horizon": {"dayRule": "FREQ=NEVER"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			rec := post(s, tt.body, "")
			g.Expect(rec.Code).To(Equal(http.StatusBadRequest))
			g.Expect(rec.Body.String()).To(ContainSubstring(`"error"`))
		})
	}
}

func TestGenerateTimetable_RunInProgress(t *testing.T) {
	g := NewWithT(t)
	s := newTestServer(busyGenerator{})

	rec := post(s, `{}`, "")

	g.Expect(rec.Code).To(Equal(http.StatusConflict))
}

func TestGenerateTimetable_PanicIsRecovered(t *testing.T) {
	g := NewWithT(t)
	s := newTestServer(panickingGenerator{})

	rec := post(s, `{}`, "")

	g.Expect(rec.Code).To(Equal(http.StatusInternalServerError))
	g.Expect(rec.Body.String()).To(MatchJSON(`{"error":"internal server error"}`))
}

type sseEvent struct {
	name string
	data string
}

func readEvents(body string) []sseEvent {
	var events []sseEvent
	var current sseEvent
	scanner := bufio.NewScanner(strings.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			current.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			current.data = strings.TrimPrefix(line, "data: ")
		case line == "":
			events = append(events, current)
			current = sseEvent{}
		}
	}
	return events
}

func TestGenerateTimetable_EventStream(t *testing.T) {
	g := NewWithT(t)
	s := newTestServer(timetabler.NewEngine(nil))

	rec := post(s, `{"seed": 3}`, "text/event-stream")

	g.Expect(rec.Code).To(Equal(http.StatusOK))
	g.Expect(rec.Header().Get("Content-Type")).To(Equal("text/event-stream"))

	events := readEvents(rec.Body.String())
	g.Expect(len(events)).To(BeNumerically(">=", 2))

	last := events[len(events)-1]
	g.Expect(last.name).To(Equal("result"))

	var result model.GenerationResult
	g.Expect(json.Unmarshal([]byte(last.data), &result)).To(Succeed())
	g.Expect(result.Timetable).To(HaveLen(5))

	previous := -1.0
	for _, event := range events[:len(events)-1] {
		g.Expect(event.name).To(Equal("progress"))

		var p progressEvent
		g.Expect(json.Unmarshal([]byte(event.data), &p)).To(Succeed())
		g.Expect(p.Percent).To(BeNumerically(">=", previous))
		previous = p.Percent
	}
	g.Expect(previous).To(Equal(100.0))
}

func TestGenerateTimetable_EventStreamError(t *testing.T) {
	g := NewWithT(t)
	s := newTestServer(busyGenerator{})

	rec := post(s, `{}`, "text/event-stream")

	events := readEvents(rec.Body.String())
	g.Expect(events).To(HaveLen(1))
	g.Expect(events[0].name).To(Equal("error"))
	g.Expect(events[0].data).To(ContainSubstring("already in progress"))
}

func TestGenerationStatus(t *testing.T) {
	g := NewWithT(t)

	g.Expect(generationStatus(&timetabler.InvalidInputError{Field: "rooms"})).To(Equal(http.StatusUnprocessableEntity))
	g.Expect(generationStatus(timetabler.ErrRunInProgress)).To(Equal(http.StatusConflict))
	g.Expect(generationStatus(context.Canceled)).To(Equal(http.StatusServiceUnavailable))
	g.Expect(generationStatus(fmt.Errorf("failed to build exam horizon: %w", errors.New("bad rule")))).To(Equal(http.StatusBadRequest))
}
