package timetabler

import (
	"time"

	"github.com/jakechorley/exam-timetabler/pkg/core/model"
)

func testHorizon(days, slots int) model.Horizon {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	h := model.Horizon{}
	for d := range days {
		h.Days = append(h.Days, start.AddDate(0, 0, d))
	}
	for s := range slots {
		h.TimeSlots = append(h.TimeSlots, []string{"09:00-12:00", "13:00-16:00", "17:00-20:00", "20:00-22:00"}[s%4])
	}
	return h
}

func allConstraints() []model.Constraint {
	return []model.Constraint{
		{ID: "c1", Description: "No student should have two exams at the same time.", Kind: model.KindHard, Enabled: true},
		{ID: "c2", Description: "Exam capacity must not exceed room capacity.", Kind: model.KindHard, Enabled: true},
		{ID: "c3", Description: "A student should not have more than two exams in a row.", Kind: model.KindSoft, Enabled: true},
		{ID: "c4", Description: "Spread out exams for the same year as much as possible.", Kind: model.KindSoft, Enabled: true},
	}
}

func onlyConstraint(rule model.Rule, kind model.ConstraintKind) []model.Constraint {
	return []model.Constraint{{ID: "x", Rule: rule, Kind: kind, Enabled: true}}
}

func sampleSnapshot() Snapshot {
	return Snapshot{
		Courses: []model.Course{
			{ID: "CS101", Name: "Intro to CS", DepartmentID: "DEPT_CS", Students: 150, Units: 3},
			{ID: "MA201", Name: "Calculus II", DepartmentID: "DEPT_MATH", Students: 80, Units: 4},
			{ID: "PHY301", Name: "Quantum Physics", DepartmentID: "DEPT_PHY", Students: 50, Units: 3},
			{ID: "ENG102", Name: "Literature", DepartmentID: "DEPT_HUM", Students: 120, Units: 3},
			{ID: "HIS210", Name: "World History", DepartmentID: "DEPT_HUM", Students: 90, Units: 2},
		},
		Rooms: []model.Room{
			{ID: "R101", Capacity: 100},
			{ID: "R102", Capacity: 160},
			{ID: "R205", Capacity: 60},
			{ID: "AUD", Capacity: 200},
		},
		Constraints: allConstraints(),
		Horizon:     testHorizon(5, 3),
	}
}

// evaluatedTally returns the tally the evaluator builds for the encoding
func evaluatedTally(snapshot Snapshot, encoding Encoding) *tally {
	evaluator := NewEvaluator(&snapshot, nil)
	evaluator.Evaluate(encoding)
	return &evaluator.tally
}
