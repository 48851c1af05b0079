package timetabler

import "github.com/jakechorley/exam-timetabler/pkg/core/model"

// SameTimeCriterion counts one violation per pair of courses sharing a day and time slot.
//
// There is no per-student enrolment data, so any two simultaneous exams are treated as a
// clash. Different rooms do not help.
type SameTimeCriterion struct{}

func NewSameTimeCriterion() *SameTimeCriterion {
	return &SameTimeCriterion{}
}

func (c *SameTimeCriterion) Name() string {
	return "SameTime"
}

func (c *SameTimeCriterion) Rule() model.Rule {
	return model.RuleSameTime
}

func (c *SameTimeCriterion) DefaultKind() model.ConstraintKind {
	return model.KindHard
}

func (c *SameTimeCriterion) Violations(t *tally) int {
	violations := 0
	for _, load := range t.slotLoad {
		violations += pairs(load)
	}
	return violations
}

// pairs returns n choose 2
func pairs(n int) int {
	return n * (n - 1) / 2
}
