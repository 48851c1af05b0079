package timetabler

import "github.com/jakechorley/exam-timetabler/pkg/core/model"

// Criterion counts the violations of one evaluation rule
type Criterion interface {
	// Name returns a human-readable identifier for this criterion
	Name() string

	// Rule returns the rule this criterion implements
	Rule() model.Rule

	// DefaultKind is the kind used when the enabled constraint does not declare one
	DefaultKind() model.ConstraintKind

	// Violations counts how often the tallied candidate breaks the rule.
	// Must be >= 0.
	Violations(t *tally) int
}

// wellKnownRules maps the constraint IDs the scheduler ships with to their rules
var wellKnownRules = map[string]model.Rule{
	"c1": model.RuleSameTime,
	"c2": model.RuleCapacity,
	"c3": model.RuleConsecutive,
	"c4": model.RuleSpread,
}

// ResolveRule returns the rule a constraint switches on. An explicit Rule wins over the
// well-known ID lookup.
func ResolveRule(constraint model.Constraint) (model.Rule, bool) {
	if constraint.Rule != "" {
		return constraint.Rule, constraint.Rule.IsValid()
	}
	rule, ok := wellKnownRules[constraint.ID]
	return rule, ok
}

// NewCriterion returns the criterion implementing the given rule
func NewCriterion(rule model.Rule) (Criterion, bool) {
	switch rule {
	case model.RuleSameTime:
		return NewSameTimeCriterion(), true
	case model.RuleCapacity:
		return NewCapacityCriterion(), true
	case model.RuleConsecutive:
		return NewConsecutiveCriterion(), true
	case model.RuleSpread:
		return NewSpreadCriterion(), true
	}
	return nil, false
}
