package timetabler

import "github.com/jakechorley/exam-timetabler/pkg/core/model"

// SpreadCriterion counts one violation per pair of same-group courses scheduled on the
// same day. The grouping key comes from Snapshot.GroupKey.
type SpreadCriterion struct{}

func NewSpreadCriterion() *SpreadCriterion {
	return &SpreadCriterion{}
}

func (c *SpreadCriterion) Name() string {
	return "Spread"
}

func (c *SpreadCriterion) Rule() model.Rule {
	return model.RuleSpread
}

func (c *SpreadCriterion) DefaultKind() model.ConstraintKind {
	return model.KindSoft
}

func (c *SpreadCriterion) Violations(t *tally) int {
	violations := 0
	for _, load := range t.groupDayLoad {
		violations += pairs(load)
	}
	return violations
}
