package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/exam-timetabler/internal/config"
	"github.com/jakechorley/exam-timetabler/pkg/core/horizon"
	"github.com/jakechorley/exam-timetabler/pkg/core/model"
	"github.com/jakechorley/exam-timetabler/pkg/core/timetabler"
	"github.com/jakechorley/exam-timetabler/pkg/db"
)

// Generator runs one timetable generation. *timetabler.Engine implements it.
type Generator interface {
	Generate(ctx context.Context, req timetabler.Request, progress chan<- float64) (*model.GenerationResult, error)
}

// GenerateOptions are the per-run settings layered over a dataset
type GenerateOptions struct {
	Algorithm     model.Algorithm
	Params        model.AlgorithmParameters
	Seed          int64
	Horizon       horizon.Input
	SpreadGroupBy string
}

// TimetableResult is a generation result together with the data it was scheduled from
type TimetableResult struct {
	Generation  *model.GenerationResult
	Departments []model.Department
	Horizon     model.Horizon
}

// OptionsFromConfig builds run options from the loaded configuration
func OptionsFromConfig(cfg *config.Config, now time.Time) (GenerateOptions, error) {
	startDate, err := cfg.StartDate(now)
	if err != nil {
		return GenerateOptions{}, err
	}

	return GenerateOptions{
		Algorithm: cfg.Algorithm,
		Params:    cfg.Params,
		Seed:      cfg.Seed,
		Horizon: horizon.Input{
			StartDate: startDate,
			DayCount:  cfg.Horizon.DayCount,
			DayRule:   cfg.Horizon.DayRule,
			TimeSlots: cfg.Horizon.TimeSlots,
		},
		SpreadGroupBy: cfg.SpreadGroupBy,
	}, nil
}

// GroupKeyFor maps the configured spread grouping to the key function the evaluator uses
func GroupKeyFor(groupBy string) (timetabler.GroupKeyFunc, error) {
	switch groupBy {
	case "", config.GroupByDepartment:
		return timetabler.DepartmentKey, nil
	case config.GroupByNone:
		return timetabler.NoGroupKey, nil
	}
	return nil, fmt.Errorf("unknown spread grouping %q", groupBy)
}

// GenerateTimetable loads the dataset from the store and schedules it.
// Progress percentages are forwarded to progress, which may be nil.
func GenerateTimetable(
	ctx context.Context,
	store db.DatasetStore,
	generator Generator,
	logger *zap.Logger,
	opts GenerateOptions,
	progress chan<- float64,
) (*TimetableResult, error) {
	logger.Debug("Loading dataset")
	dataset, err := db.LoadDataset(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	logger.Debug("Dataset loaded",
		zap.Int("departments", len(dataset.Departments)),
		zap.Int("courses", len(dataset.Courses)),
		zap.Int("rooms", len(dataset.Rooms)),
		zap.Int("constraints", len(dataset.Constraints)))

	return GenerateFromDataset(ctx, dataset, generator, logger, opts, progress)
}

// GenerateFromDataset schedules an already loaded dataset
func GenerateFromDataset(
	ctx context.Context,
	dataset *db.Dataset,
	generator Generator,
	logger *zap.Logger,
	opts GenerateOptions,
	progress chan<- float64,
) (*TimetableResult, error) {
	groupKey, err := GroupKeyFor(opts.SpreadGroupBy)
	if err != nil {
		return nil, err
	}

	hzInput := opts.Horizon
	hzInput.Courses = len(dataset.Courses)
	hz, err := horizon.Build(hzInput)
	if err != nil {
		return nil, fmt.Errorf("failed to build exam horizon: %w", err)
	}

	logger.Info("Exam horizon built",
		zap.String("first_day", hz.DayLabel(0)),
		zap.String("last_day", hz.DayLabel(len(hz.Days)-1)),
		zap.Int("days", len(hz.Days)),
		zap.Int("time_slots", len(hz.TimeSlots)))

	if hz.Size() < len(dataset.Courses) {
		logger.Warn("Fewer (day, slot) pairs than courses, same-time clashes are unavoidable",
			zap.Int("pairs", hz.Size()),
			zap.Int("courses", len(dataset.Courses)))
	}

	req := timetabler.Request{
		Snapshot: timetabler.Snapshot{
			Courses:     dataset.Courses,
			Rooms:       dataset.Rooms,
			Constraints: dataset.Constraints,
			Horizon:     hz,
			GroupKey:    groupKey,
		},
		Algorithm: opts.Algorithm,
		Params:    opts.Params,
		Seed:      opts.Seed,
	}

	result, err := generator.Generate(ctx, req, progress)
	if err != nil {
		return nil, fmt.Errorf("failed to generate timetable: %w", err)
	}

	logger.Info("Timetable generated",
		zap.String("run_id", result.RunID),
		zap.Int("entries", len(result.Timetable)),
		zap.Int("hard_violations", result.Metrics.HardConstraintViolations),
		zap.Int("soft_violations", result.Metrics.SoftConstraintViolations))

	return &TimetableResult{
		Generation:  result,
		Departments: dataset.Departments,
		Horizon:     hz,
	}, nil
}
