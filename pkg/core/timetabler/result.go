package timetabler

import (
	"fmt"
	"time"

	"github.com/jakechorley/exam-timetabler/pkg/core/model"
)

// buildResult expands the winning encoding into timetable entries and recomputes the final
// violation counts with the evaluator so the reported metrics always match the timetable.
func buildResult(
	runID string,
	algorithm model.Algorithm,
	snapshot *Snapshot,
	evaluator *Evaluator,
	best Encoding,
	history []model.FitnessPoint,
	elapsed time.Duration,
) *model.GenerationResult {
	timetable := make([]model.TimetableEntry, len(best))
	for i, assignment := range best {
		if !evaluator.space.contains(assignment) {
			panic(fmt.Sprintf("course %d assigned outside the horizon: %+v", i, assignment))
		}
		timetable[i] = model.TimetableEntry{
			Course:    snapshot.Courses[i],
			Room:      snapshot.Rooms[assignment.Room],
			Day:       snapshot.Horizon.DayLabel(assignment.Day),
			TimeSlot:  snapshot.Horizon.TimeSlots[assignment.Slot],
			DayIndex:  assignment.Day,
			SlotIndex: assignment.Slot,
		}
	}

	score := evaluator.Evaluate(best)

	return &model.GenerationResult{
		RunID:     runID,
		Algorithm: algorithm,
		Timetable: timetable,
		Metrics: model.Metrics{
			GenerationTime:           elapsed,
			GenerationTimeMs:         elapsed.Milliseconds(),
			HardConstraintViolations: score.Hard,
			SoftConstraintViolations: score.Soft,
			Fitness:                  score.Fitness,
			FitnessHistory:           history,
		},
	}
}
