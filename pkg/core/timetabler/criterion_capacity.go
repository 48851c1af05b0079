package timetabler

import "github.com/jakechorley/exam-timetabler/pkg/core/model"

// CapacityCriterion counts one violation per course whose enrolment exceeds the capacity
// of its assigned room.
type CapacityCriterion struct{}

func NewCapacityCriterion() *CapacityCriterion {
	return &CapacityCriterion{}
}

func (c *CapacityCriterion) Name() string {
	return "Capacity"
}

func (c *CapacityCriterion) Rule() model.Rule {
	return model.RuleCapacity
}

func (c *CapacityCriterion) DefaultKind() model.ConstraintKind {
	return model.KindHard
}

func (c *CapacityCriterion) Violations(t *tally) int {
	violations := 0
	for i, assignment := range t.encoding {
		if t.courses[i].Students > t.rooms[assignment.Room].Capacity {
			violations++
		}
	}
	return violations
}
