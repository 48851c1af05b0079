package timetabler

import (
	"context"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/exam-timetabler/pkg/core/model"
)

// Request bundles everything one generation run needs
type Request struct {
	Snapshot  Snapshot
	Algorithm model.Algorithm
	Params    model.AlgorithmParameters

	// Seed seeds the run's random source when Rand is nil. Zero means time-based.
	Seed int64

	// Rand overrides the random source entirely
	Rand *rand.Rand
}

// Engine runs timetable generation. It allows one run in flight at a time.
type Engine struct {
	logger  *zap.Logger
	running atomic.Bool
}

// NewEngine creates an engine logging to the given logger (nil discards logs)
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Generate searches for a low-violation timetable with the requested algorithm.
//
// Progress percentages in [0, 100] are sent on progress (which may be nil) and never
// decrease. Intermediate values are dropped rather than blocking the search; the final 100
// is delivered before Generate returns unless ctx is done. Generate never closes progress.
//
// Infeasible inputs still produce a result with non-zero hard violations. Only input from
// which no assignment can be built fails, with an *InvalidInputError.
func (e *Engine) Generate(ctx context.Context, req Request, progress chan<- float64) (*model.GenerationResult, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer e.running.Store(false)

	start := time.Now()
	runID := uuid.New().String()
	logger := e.logger.With(zap.String("run_id", runID))

	if !req.Algorithm.IsValid() {
		return nil, invalidInput("algorithm", "unknown algorithm %q", req.Algorithm)
	}

	snapshot := req.Snapshot
	if err := snapshot.validate(); err != nil {
		return nil, err
	}

	params := ClampParameters(req.Params, logger)

	rng := req.Rand
	if rng == nil {
		rng = NewRand(req.Seed)
	}

	logger.Info("Starting timetable generation",
		zap.String("algorithm", string(req.Algorithm)),
		zap.Int("courses", len(snapshot.Courses)),
		zap.Int("rooms", len(snapshot.Rooms)),
		zap.Int("days", len(snapshot.Horizon.Days)),
		zap.Int("time_slots", len(snapshot.Horizon.TimeSlots)),
		zap.Int("budget", params.Generations))

	evaluator := NewEvaluator(&snapshot, logger)
	logger.Debug("Bound constraint rules", zap.Any("rules", evaluator.Rules()))

	reporter := &progressReporter{ch: progress, logger: logger}
	rc := newRunContext(ctx, params.Generations, reporter)

	var outcome searchOutcome
	var err error
	switch {
	case len(snapshot.Courses) == 0:
		// Nothing to search, the empty timetable is perfect
		outcome, err = emptySearch(rc)
	case req.Algorithm == model.AlgorithmGenetic:
		search := &geneticSearch{
			evaluator: evaluator,
			space:     snapshot.geneSpace(),
			params:    params,
			rng:       rng,
			courses:   len(snapshot.Courses),
		}
		outcome, err = search.run(rc)
	default:
		search := &annealingSearch{
			evaluator: evaluator,
			space:     snapshot.geneSpace(),
			params:    params,
			rng:       rng,
			courses:   len(snapshot.Courses),
		}
		outcome, err = search.run(rc)
	}
	if err != nil {
		logger.Warn("Timetable generation stopped", zap.Error(err))
		return nil, err
	}

	result := buildResult(runID, req.Algorithm, &snapshot, evaluator, outcome.best, rc.history, time.Since(start))
	reporter.complete(ctx)

	logger.Info("Timetable generation completed",
		zap.Int("hard_violations", result.Metrics.HardConstraintViolations),
		zap.Int("soft_violations", result.Metrics.SoftConstraintViolations),
		zap.Float64("fitness", result.Metrics.Fitness),
		zap.Duration("elapsed", result.Metrics.GenerationTime))

	return result, nil
}

// emptySearch fills the history for a run with no courses
func emptySearch(rc *runContext) (searchOutcome, error) {
	for iteration := 1; iteration <= rc.budget; iteration++ {
		if err := rc.step(iteration, 0); err != nil {
			return searchOutcome{}, err
		}
	}
	return searchOutcome{best: Encoding{}}, nil
}
