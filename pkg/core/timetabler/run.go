package timetabler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/exam-timetabler/pkg/core/model"
)

// progressReporter forwards non-decreasing percentages to an optional channel.
// Intermediate values never block the search: if the receiver is behind, the value is dropped.
type progressReporter struct {
	ch     chan<- float64
	last   float64
	logged int
	logger *zap.Logger
}

func (p *progressReporter) report(percent float64) {
	percent = max(p.last, min(percent, 100))
	p.last = percent

	if decile := int(percent / 10); decile > p.logged {
		p.logged = decile
		p.logger.Debug("Generation progress", zap.Float64("percent", percent))
	}

	if p.ch == nil {
		return
	}
	select {
	case p.ch <- percent:
	default:
	}
}

// complete delivers 100 to the receiver, blocking until it is read or ctx is done
func (p *progressReporter) complete(ctx context.Context) {
	p.last = 100
	if p.ch == nil {
		return
	}
	select {
	case p.ch <- 100:
	case <-ctx.Done():
	}
}

// runContext is the run-local state shared by both search engines: the iteration budget,
// the best-so-far fitness trace and the suspension point.
type runContext struct {
	ctx      context.Context
	budget   int
	history  []model.FitnessPoint
	progress *progressReporter
}

func newRunContext(ctx context.Context, budget int, progress *progressReporter) *runContext {
	return &runContext{
		ctx:      ctx,
		budget:   budget,
		history:  make([]model.FitnessPoint, 0, budget),
		progress: progress,
	}
}

// step records the best fitness after the given 1-based iteration, reports progress and
// checks for cancellation. It is called once per generation or annealing iteration.
func (rc *runContext) step(iteration int, bestFitness float64) error {
	rc.history = append(rc.history, model.FitnessPoint{
		Iteration: iteration,
		Fitness:   bestFitness,
	})
	rc.progress.report(100 * float64(iteration) / float64(rc.budget))

	if err := rc.ctx.Err(); err != nil {
		return fmt.Errorf("generation cancelled after %d of %d iterations: %w", iteration, rc.budget, err)
	}
	return nil
}

// searchOutcome is what a search engine hands to the result builder
type searchOutcome struct {
	best  Encoding
	score Score
}
