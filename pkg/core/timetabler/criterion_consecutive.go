package timetabler

import "github.com/jakechorley/exam-timetabler/pkg/core/model"

// ConsecutiveCriterion penalizes more than two occupied time slots in a row on the same day.
// A run of n >= 3 consecutive occupied slots counts n-2 violations.
type ConsecutiveCriterion struct{}

func NewConsecutiveCriterion() *ConsecutiveCriterion {
	return &ConsecutiveCriterion{}
}

func (c *ConsecutiveCriterion) Name() string {
	return "Consecutive"
}

func (c *ConsecutiveCriterion) Rule() model.Rule {
	return model.RuleConsecutive
}

func (c *ConsecutiveCriterion) DefaultKind() model.ConstraintKind {
	return model.KindSoft
}

func (c *ConsecutiveCriterion) Violations(t *tally) int {
	violations := 0
	for day := range t.days {
		run := 0
		for slot := range t.slots {
			if t.slotLoad[day*t.slots+slot] == 0 {
				run = 0
				continue
			}
			run++
			if run > 2 {
				violations++
			}
		}
	}
	return violations
}
